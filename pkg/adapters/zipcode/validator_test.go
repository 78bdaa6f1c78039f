package zipcode_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/leadwizard/pkg/adapters/zipcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupServer(t *testing.T, states map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		zip := strings.TrimPrefix(r.URL.Path, "/")
		state, ok := states[zip]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte("{}"))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"post code": "` + zip + `", "places": [{"place name": "X", "state abbreviation": "` + state + `"}]}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestValidator_Eligible(t *testing.T) {
	srv := lookupServer(t, map[string]string{
		"39201": "MS",
		"35203": "AL",
		"10001": "NY",
	})

	v := zipcode.New(
		zipcode.WithBaseURL(srv.URL),
		zipcode.WithAllowList(map[string]bool{"70112": true}),
	)
	ctx := context.Background()

	tests := []struct {
		name string
		zip  string
		want bool
	}{
		{"Approved State", "39201", true},
		{"Another Approved State", "35203", true},
		{"Other State", "10001", false},
		{"API Miss Falls Back To Allow-List", "70112", true},
		{"API Miss Not In Allow-List", "99999", false},
		{"Too Short", "3920", false},
		{"Letters", "ABCDE", false},
		{"Surrounding Space", " 39201 ", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, v.Eligible(ctx, tt.zip))
		})
	}
}

func TestValidator_UnreachableAPI(t *testing.T) {
	srv := lookupServer(t, nil)
	url := srv.URL
	srv.Close()

	v := zipcode.New(
		zipcode.WithBaseURL(url),
		zipcode.WithAllowList(map[string]bool{"39201": true}),
	)
	assert.True(t, v.Eligible(context.Background(), "39201"))
	assert.False(t, v.Eligible(context.Background(), "30301"))
}

func TestValidator_CustomStates(t *testing.T) {
	srv := lookupServer(t, map[string]string{"10001": "NY"})
	v := zipcode.New(zipcode.WithBaseURL(srv.URL), zipcode.WithStates("ny"))
	assert.True(t, v.Eligible(context.Background(), "10001"))
}

func TestLoadAllowList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zips.csv")
	require.NoError(t, os.WriteFile(path, []byte("state,zip_code\nMS,39201\nGA,30301\nLA,\n"), 0o644))

	zips, err := zipcode.LoadAllowList(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"39201": true, "30301": true}, zips)

	_, err = zipcode.LoadAllowList(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestReadAllowList_MissingColumn(t *testing.T) {
	_, err := zipcode.ReadAllowList(strings.NewReader("zip\n39201\n"))
	assert.ErrorContains(t, err, "zip_code")
}
