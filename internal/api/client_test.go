package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoSendsBearerAndJSON(t *testing.T) {
	var gotAuth, gotPath, gotMethod string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotMethod = r.Method
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok-123")
	err := c.UpdateProjectFields(context.Background(), "p1", Fields{"Status": "completed"})
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Equal(t, "/api/v1/projects/p1/fields", gotPath)
	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, map[string]any{"Status": "completed"}, gotBody)
}

func TestDoSurfacesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"boom"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	err := c.UpdateTaskFields(context.Background(), "t1", Fields{"Notes": "x"})
	assert.Error(t, err)
}

func TestCreateProjectReturnsAssignedID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/projects", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		_, _ = w.Write([]byte(`{"id":"srv-p-9"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	id, err := c.CreateProject(context.Background(), ProjectCreate{Name: "Deck", CompanyID: "c1"})
	require.NoError(t, err)
	assert.Equal(t, "srv-p-9", id)
}

func TestOnline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))

	c := NewClient(srv.URL, "")
	assert.True(t, c.Online(context.Background()))

	srv.Close()
	assert.False(t, c.Online(context.Background()))
}

func TestFetchCompanyUsers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/companies/c1/users", r.URL.Path)
		_, _ = w.Write([]byte(`{"users":[{"id":"u1","company_id":"c1","name":"Ana","email":"ana@acme.test"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	users, err := c.FetchCompanyUsers(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Ana", users[0].Name)
}

func TestLoginStoresToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/login", r.URL.Path)

		var creds Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "ana@acme.test", creds.Email)

		_, _ = w.Write([]byte(`{"token":"fresh","user_id":"u1","company_id":"c1"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	result, err := c.Login(context.Background(), "ana@acme.test", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "fresh", result.Token)
	assert.Equal(t, "c1", result.CompanyID)
	assert.Equal(t, "fresh", c.token)
}

func TestUploadImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/images", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "task", r.FormValue("owner_type"))
		assert.Equal(t, "t1", r.FormValue("owner_id"))

		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "site.jpg", header.Filename)

		_, _ = w.Write([]byte(`{"url":"/uploads/abc-site.jpg"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	url, err := c.UploadImage(context.Background(), "task", "t1", "site.jpg", []byte("jpegbytes"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/abc-site.jpg", url)
}
