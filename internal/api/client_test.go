// Pantry Partner Admin Dashboard
// Copyright 2026 Pantry Partner contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pantrypartner/dashboard

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pantrypartner/dashboard/internal/config"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClient(&config.APIConfig{BaseURL: srv.URL, Timeout: 5 * time.Second})
	client.retryBaseDelay = time.Millisecond
	return client
}

func TestLogin(t *testing.T) {
	t.Run("success returns identity with passthrough fields", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/auth/login" {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
			w.Write([]byte(`{"user":{"id":"u-1","email":"a@b.c","role":"admin"}}`))
		}))

		identity, err := client.Login(context.Background(), "a@b.c")
		if err != nil {
			t.Fatalf("Login: %v", err)
		}
		if identity.ID != "u-1" || identity.Email != "a@b.c" {
			t.Errorf("identity = %+v", identity)
		}
		if string(identity.Extra["role"]) != `"admin"` {
			t.Errorf("Extra[role] = %s", identity.Extra["role"])
		}
	})

	t.Run("failure surfaces the remote message verbatim", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"No account found for this email"}`))
		}))

		_, err := client.Login(context.Background(), "nobody@b.c")
		if err == nil {
			t.Fatal("expected error")
		}
		if err.Error() != "No account found for this email" {
			t.Errorf("message = %q", err.Error())
		}
		if KindOf(err) != KindAuthentication {
			t.Errorf("kind = %v, want authentication", KindOf(err))
		}
	})

	t.Run("missing user data is malformed", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"user":{}}`))
		}))

		_, err := client.Login(context.Background(), "a@b.c")
		if KindOf(err) != KindMalformed {
			t.Fatalf("kind = %v, want malformed (err=%v)", KindOf(err), err)
		}
		if err.Error() != "invalid response from login endpoint: user data missing" {
			t.Errorf("message = %q", err.Error())
		}
	})

	t.Run("unreachable server is a transport failure", func(t *testing.T) {
		client := NewClient(&config.APIConfig{BaseURL: "http://127.0.0.1:1", Timeout: time.Second})

		_, err := client.Login(context.Background(), "a@b.c")
		if KindOf(err) != KindTransport {
			t.Errorf("kind = %v, want transport", KindOf(err))
		}
	})
}

func TestVerifyAdmin(t *testing.T) {
	t.Run("empty user id verifies false without a request", func(t *testing.T) {
		called := false
		client := newTestClient(t, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			called = true
		}))

		isAdmin, err := client.VerifyAdmin(context.Background(), "")
		if err != nil || isAdmin {
			t.Errorf("VerifyAdmin = (%v, %v), want (false, nil)", isAdmin, err)
		}
		if called {
			t.Error("no request should be made for an empty id")
		}
	})

	t.Run("sends the user id header", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("x-user-id"); got != "u-1" {
				t.Errorf("x-user-id = %q", got)
			}
			w.Write([]byte(`{"success":true,"data":{"is_admin":true}}`))
		}))

		isAdmin, err := client.VerifyAdmin(context.Background(), "u-1")
		if err != nil || !isAdmin {
			t.Errorf("VerifyAdmin = (%v, %v), want (true, nil)", isAdmin, err)
		}
	})

	t.Run("nested user admin flag counts", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"success":true,"data":{"user":{"is_admin":true}}}`))
		}))

		isAdmin, err := client.VerifyAdmin(context.Background(), "u-1")
		if err != nil || !isAdmin {
			t.Errorf("VerifyAdmin = (%v, %v), want (true, nil)", isAdmin, err)
		}
	})

	t.Run("401 and 403 mean not admin, not error", func(t *testing.T) {
		for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(status)
			}))

			isAdmin, err := client.VerifyAdmin(context.Background(), "u-1")
			if err != nil || isAdmin {
				t.Errorf("status %d: VerifyAdmin = (%v, %v), want (false, nil)", status, isAdmin, err)
			}
		}
	})

	t.Run("unsuccessful envelope means not admin", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"success":false}`))
		}))

		isAdmin, err := client.VerifyAdmin(context.Background(), "u-1")
		if err != nil || isAdmin {
			t.Errorf("VerifyAdmin = (%v, %v), want (false, nil)", isAdmin, err)
		}
	})

	t.Run("server error is a transport failure", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))

		_, err := client.VerifyAdmin(context.Background(), "u-1")
		if KindOf(err) != KindTransport {
			t.Errorf("kind = %v, want transport", KindOf(err))
		}
	})
}

func TestMetrics(t *testing.T) {
	t.Run("success decodes the envelope data", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/admin/metrics" {
				t.Errorf("path = %q", r.URL.Path)
			}
			w.Write([]byte(`{"success":true,"data":{"totalUsers":12,"totalRecipes":34,"averageGenerationTimeMs":3200}}`))
		}))

		metrics, err := client.Metrics(context.Background(), "u-1")
		if err != nil {
			t.Fatalf("Metrics: %v", err)
		}
		if metrics.TotalUsers != 12 || metrics.TotalRecipes != 34 {
			t.Errorf("metrics = %+v", metrics)
		}
	})

	t.Run("401 is an authentication failure", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))

		_, err := client.Metrics(context.Background(), "u-1")
		if KindOf(err) != KindAuthentication {
			t.Fatalf("kind = %v, want authentication", KindOf(err))
		}
		if err.Error() != "Unauthorized - invalid credentials" {
			t.Errorf("message = %q", err.Error())
		}
	})

	t.Run("403 is the privilege-loss sentinel", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))

		_, err := client.Metrics(context.Background(), "u-1")
		if !IsPrivilegeLoss(err) {
			t.Errorf("expected privilege-loss sentinel, got %v", err)
		}
	})

	t.Run("unsuccessful envelope is malformed", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"success":false,"error":"database offline"}`))
		}))

		_, err := client.Metrics(context.Background(), "u-1")
		if KindOf(err) != KindMalformed {
			t.Fatalf("kind = %v, want malformed", KindOf(err))
		}
		if err.Error() != "database offline" {
			t.Errorf("message = %q", err.Error())
		}
	})

	t.Run("api key fallback when no user id is bound", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("x-admin-api-key"); got != "k-1" {
				t.Errorf("x-admin-api-key = %q", got)
			}
			w.Write([]byte(`{"success":true,"data":{}}`))
		}))
		defer srv.Close()

		client := NewClient(&config.APIConfig{BaseURL: srv.URL, AdminAPIKey: "k-1", Timeout: time.Second})
		if _, err := client.Metrics(context.Background(), ""); err != nil {
			t.Fatalf("Metrics: %v", err)
		}
	})

	t.Run("no credentials at all is an authentication failure", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

		_, err := client.Metrics(context.Background(), "")
		if KindOf(err) != KindAuthentication {
			t.Errorf("kind = %v, want authentication", KindOf(err))
		}
	})
}

func TestDailyMetrics(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/metrics/daily" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"success":true,"data":{"dailyBreakdown":[{"dateFormatted":"Aug 1","recipesGenerated":5}]}}`))
	}))

	daily, err := client.DailyMetrics(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("DailyMetrics: %v", err)
	}
	if len(daily.DailyBreakdown) != 1 || daily.DailyBreakdown[0].RecipesGenerated != 5 {
		t.Errorf("daily = %+v", daily)
	}
}

func TestRateLimitRetry(t *testing.T) {
	t.Run("retries after 429 and succeeds", func(t *testing.T) {
		var calls atomic.Int32
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if calls.Add(1) <= 2 {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			w.Write([]byte(`{"success":true,"data":{"is_admin":true}}`))
		}))

		isAdmin, err := client.VerifyAdmin(context.Background(), "u-1")
		if err != nil || !isAdmin {
			t.Fatalf("VerifyAdmin = (%v, %v), want (true, nil)", isAdmin, err)
		}
		if calls.Load() != 3 {
			t.Errorf("calls = %d, want 3", calls.Load())
		}
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))

		_, err := client.VerifyAdmin(context.Background(), "u-1")
		if err == nil {
			t.Fatal("expected error after exhausting retries")
		}
		if KindOf(err) != KindTransport {
			t.Errorf("kind = %v, want transport", KindOf(err))
		}
	})

	t.Run("cancellation aborts the backoff wait", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Retry-After", "30")
			w.WriteHeader(http.StatusTooManyRequests)
		}))

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		done := make(chan error, 1)
		go func() {
			_, err := client.VerifyAdmin(ctx, "u-1")
			done <- err
		}()

		select {
		case err := <-done:
			if err == nil {
				t.Error("expected error from canceled context")
			}
		case <-time.After(2 * time.Second):
			t.Fatal("backoff did not honor cancellation")
		}
	})
}

func TestKindOf(t *testing.T) {
	if KindOf(errors.New("plain")) != KindTransport {
		t.Error("foreign errors should classify as transport")
	}
	if KindOf(newError(KindAuthorization, "denied")) != KindAuthorization {
		t.Error("tagged errors should report their kind")
	}
}
