package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"daybook/internal/config"
)

func TestCurrent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("latitude") != "52.52" {
			t.Errorf("latitude = %q", r.URL.Query().Get("latitude"))
		}
		_, _ = w.Write([]byte(`{"current_weather":{"temperature":18.3,"windspeed":11.2,"weathercode":2}}`))
	}))
	defer server.Close()

	c := NewClient(config.Weather{
		Enabled:  true,
		Endpoint: server.URL,
		Location: "52.52, 13.41",
	})
	if c == nil {
		t.Fatal("client not built")
	}

	conditions := c.Current(context.Background())
	if conditions == nil {
		t.Fatal("no conditions returned")
	}
	if conditions["temperature"] != 18.3 {
		t.Errorf("temperature = %v", conditions["temperature"])
	}
	if conditions["summary"] != "partly cloudy" {
		t.Errorf("summary = %v", conditions["summary"])
	}
}

func TestCurrent_FailureReturnsNil(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer server.Close()

	c := NewClient(config.Weather{Enabled: true, Endpoint: server.URL, Location: "1,2"})

	if conditions := c.Current(context.Background()); conditions != nil {
		t.Errorf("conditions = %v, want nil", conditions)
	}
}

func TestNewClient_Disabled(t *testing.T) {
	if c := NewClient(config.Weather{Enabled: false, Location: "1,2"}); c != nil {
		t.Error("expected nil client when disabled")
	}
}

func TestNewClient_BadLocation(t *testing.T) {
	for _, loc := range []string{"", "Berlin", "52.52", "x,y"} {
		if c := NewClient(config.Weather{Enabled: true, Location: loc}); c != nil {
			t.Errorf("expected nil client for location %q", loc)
		}
	}
}

func TestCurrent_NilClient(t *testing.T) {
	var c *Client
	if conditions := c.Current(context.Background()); conditions != nil {
		t.Errorf("conditions = %v, want nil", conditions)
	}
}
