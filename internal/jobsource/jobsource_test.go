package jobsource

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const vacancyJSON = `{
	"id": "123",
	"name": "Senior Go Developer",
	"employer": {"id": "emp1", "name": "Acme"},
	"description": "<p><strong>Requirements:</strong></p><ul><li>Go 3+ years</li><li>PostgreSQL</li></ul><p>Nice to have: Kafka &amp; Redis</p>",
	"key_skills": [{"name": "Go"}, {"name": " PostgreSQL "}, {"name": "go"}, {"name": ""}]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := New(nil, "secret")
	c.APIURL = srv.URL
	return c
}

func TestVacancy(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/vacancies/123", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(vacancyJSON))
	})

	v, err := c.Vacancy(context.Background(), "123")
	require.NoError(t, err)

	assert.Equal(t, "Senior Go Developer", v.Name)
	assert.Equal(t, "Acme", v.Employer.Name)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, v.Skills())
	assert.Equal(t,
		"Senior Go Developer\n\nRequirements:\n• Go 3+ years\n• PostgreSQL\nNice to have: Kafka & Redis\n\nKey skills: Go, PostgreSQL",
		v.JobDescription())
}

func TestVacancyGzip(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "gzip", r.Header.Get("Accept-Encoding"))
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		defer gz.Close()
		assert.NoError(t, json.NewEncoder(gz).Encode(map[string]string{"id": "7", "name": "Backend"}))
	})

	v, err := c.Vacancy(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, "7", v.ID)
	assert.Equal(t, "Backend", v.Name)
}

func TestVacancyWithoutToken(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"id":"1"}`))
	}))
	t.Cleanup(srv.Close)

	c := New(nil, "")
	c.APIURL = srv.URL
	_, err := c.Vacancy(context.Background(), "1")
	require.NoError(t, err)
}

func TestVacancyErrors(t *testing.T) {
	t.Parallel()

	notFound := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	_, err := notFound.Vacancy(context.Background(), "404")
	require.ErrorIs(t, err, ErrNotFound)

	forbidden := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	_, err = forbidden.Vacancy(context.Background(), "1")
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusForbidden, statusErr.Code)

	broken := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	})
	_, err = broken.Vacancy(context.Background(), "1")
	require.Error(t, err)

	_, err = broken.Vacancy(context.Background(), "")
	require.Error(t, err)
}

func TestPlainText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Just text", "Just text"},
		{"line breaks", "first<br>second<br/>third", "first\nsecond\nthird"},
		{"inline tags", "<p>Use <em>Go</em> and <b>gRPC</b></p>", "Use Go and gRPC"},
		{"scripts dropped", "<p>visible</p><script>alert(1)</script>", "visible"},
		{"whitespace collapsed", "<p>  a \n\t b  </p>", "a b"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlainText(tt.input))
		})
	}
}
