// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package wordpress

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"autopress/internal/models"
)

// testSite builds a site pointing at the given test server URL.
func testSite(url string) *models.Site {
	return &models.Site{
		Name:        "Test Site",
		URL:         url,
		APIUsername: "publisher",
		APIPassword: "app-password",
	}
}

func TestCreatePostSuccess(t *testing.T) {
	var gotPath, gotAuthUser string
	var gotParams PostParams

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuthUser, _, _ = r.BasicAuth()
		json.NewDecoder(r.Body).Decode(&gotParams)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(RemotePost{ID: 4211, Link: "https://example.com/hello", Status: "publish"})
	}))
	defer srv.Close()

	c := New(5 * time.Second)
	remote, err := c.CreatePost(context.Background(), testSite(srv.URL), PostParams{
		Title:   "Hello",
		Content: "<p>Body</p>",
		Status:  "publish",
		Excerpt: "summary",
	})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	if remote.ID != 4211 {
		t.Errorf("remote id: got %d, want 4211", remote.ID)
	}
	if gotPath != "/wp-json/wp/v2/posts" {
		t.Errorf("path: got %q, want /wp-json/wp/v2/posts", gotPath)
	}
	if gotAuthUser != "publisher" {
		t.Errorf("basic auth user: got %q, want %q", gotAuthUser, "publisher")
	}
	if gotParams.Title != "Hello" || gotParams.Status != "publish" {
		t.Errorf("payload: got %+v", gotParams)
	}
}

func TestCreatePostTrimsTrailingSlash(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(RemotePost{ID: 1})
	}))
	defer srv.Close()

	c := New(0)
	if _, err := c.CreatePost(context.Background(), testSite(srv.URL+"/"), PostParams{Title: "t"}); err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if gotPath != "/wp-json/wp/v2/posts" {
		t.Errorf("path: got %q, want /wp-json/wp/v2/posts", gotPath)
	}
}

func TestCreatePostRemoteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"code":"rest_cannot_create","message":"Sorry, not allowed."}`))
	}))
	defer srv.Close()

	c := New(5 * time.Second)
	_, err := c.CreatePost(context.Background(), testSite(srv.URL), PostParams{Title: "t"})
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
	if !strings.Contains(err.Error(), "status 401") {
		t.Errorf("error should carry the status code, got: %v", err)
	}
	if !strings.Contains(err.Error(), "rest_cannot_create") {
		t.Errorf("error should carry the remote body, got: %v", err)
	}
}

func TestUpdatePostTargetsRemoteID(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(RemotePost{ID: 77})
	}))
	defer srv.Close()

	c := New(0)
	if _, err := c.UpdatePost(context.Background(), testSite(srv.URL), 77, PostParams{Title: "t"}); err != nil {
		t.Fatalf("UpdatePost: %v", err)
	}
	if gotPath != "/wp-json/wp/v2/posts/77" {
		t.Errorf("path: got %q, want /wp-json/wp/v2/posts/77", gotPath)
	}
}

func TestGetPostFetchesRemoteID(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(RemotePost{ID: 42, Status: "publish"})
	}))
	defer srv.Close()

	c := New(0)
	post, err := c.GetPost(context.Background(), testSite(srv.URL), 42)
	if err != nil {
		t.Fatalf("GetPost: %v", err)
	}
	if gotMethod != http.MethodGet {
		t.Errorf("method: got %q, want GET", gotMethod)
	}
	if gotPath != "/wp-json/wp/v2/posts/42" {
		t.Errorf("path: got %q, want /wp-json/wp/v2/posts/42", gotPath)
	}
	if post.ID != 42 || post.Status != "publish" {
		t.Errorf("post: got id=%d status=%q, want the remote payload", post.ID, post.Status)
	}
}

func TestDeletePostForces(t *testing.T) {
	var gotMethod, gotForce string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotForce = r.URL.Query().Get("force")
		json.NewEncoder(w).Encode(RemotePost{ID: 5})
	}))
	defer srv.Close()

	c := New(0)
	if err := c.DeletePost(context.Background(), testSite(srv.URL), 5); err != nil {
		t.Fatalf("DeletePost: %v", err)
	}
	if gotMethod != http.MethodDelete {
		t.Errorf("method: got %q, want DELETE", gotMethod)
	}
	if gotForce != "true" {
		t.Errorf("force: got %q, want true", gotForce)
	}
}

func TestCheckConnection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wp-json/wp/v2/users/me" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if _, pass, _ := r.BasicAuth(); pass != "app-password" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"id":1}`))
	}))
	defer srv.Close()

	c := New(0)
	if err := c.CheckConnection(context.Background(), testSite(srv.URL)); err != nil {
		t.Errorf("CheckConnection: %v", err)
	}

	bad := testSite(srv.URL)
	bad.APIPassword = "wrong"
	if err := c.CheckConnection(context.Background(), bad); err == nil {
		t.Error("expected error for bad credentials")
	}
}

func TestClientUnreachableHost(t *testing.T) {
	c := New(500 * time.Millisecond)
	site := testSite("http://127.0.0.1:1")
	if _, err := c.CreatePost(context.Background(), site, PostParams{Title: "t"}); err == nil {
		t.Error("expected error for unreachable host")
	}
}
