// Copyright 2024 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package stats

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet(t *testing.T) {
	a := assert.New(t)
	set := newSet()
	a.Empty(set.Collect(All))

	v0 := set.Create("v0", "desc0")
	a.Equal(v0.Val(), 0)
	v0.Add(1)
	a.Equal(v0.Val(), 1)
	v0.Add(1)
	a.Equal(v0.Val(), 2)

	v1 := set.Create("v1", "desc1", Console, func(v int) string {
		return fmt.Sprintf("%v ms", v)
	})
	v1.Add(100)

	v2 := set.Create("v2", "desc2", Distribution{})
	a.Equal(v2.Val(), 0)
	v2.Add(10)
	a.Equal(v2.Val(), 10)
	v2.Add(20)
	a.Equal(v2.Val(), 15)
	v2.Add(30)
	a.Equal(v2.Val(), 20)

	a.Panics(func() { set.Create("v3", "desc3", float64(1)) })
	a.Panics(func() { set.Create("v0", "desc0") })

	ui := set.Collect(All)
	a.Equal([]UI{
		{"v1", "desc1", Console, "100 ms", 100},
		{"v0", "desc0", All, "2", 2},
		{"v2", "desc2", All, "20", 20},
	}, ui)

	ui1 := set.Collect(Console)
	a.Equal(len(ui1), 1)
	a.Equal(ui1[0].Name, "v1")
}

func TestSetConcurrent(t *testing.T) {
	set := newSet()
	v := set.Create("v", "desc")
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				v.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 8000, v.Val())
}

func TestPush(t *testing.T) {
	var gotPath, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	set := newSet()
	set.Create("lint errors", "cpplint errors", Prometheus("presubmit_lint_errors")).Add(3)
	set.Create("local only", "not exported").Add(1)
	err := set.Push(context.Background(), srv.URL, "presubmit", map[string]string{"run": "1234"})
	require.NoError(t, err)
	assert.Equal(t, "/metrics/job/presubmit/run/1234", gotPath)
	assert.True(t, strings.Contains(gotBody, "presubmit_lint_errors"), "body: %q", gotBody)
	assert.False(t, strings.Contains(gotBody, "not exported"))

	srv.Close()
	assert.Error(t, set.Push(context.Background(), srv.URL, "presubmit", nil))
}
