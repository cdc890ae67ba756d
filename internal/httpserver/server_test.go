package httpserver

import (
	"context"
	"net/http"
	"testing"
	"time"
)

func TestNewAppliesTimeouts(t *testing.T) {
	timeouts := Timeouts{
		ReadHeader: 5 * time.Second,
		Write:      15 * time.Minute,
		Shutdown:   10 * time.Second,
	}
	srv := New(8080, http.NewServeMux(), timeouts)

	if srv.inner.Addr != ":8080" {
		t.Fatalf("expected addr :8080 got %q", srv.inner.Addr)
	}
	if srv.inner.ReadHeaderTimeout != timeouts.ReadHeader {
		t.Fatalf("expected read header timeout %v got %v", timeouts.ReadHeader, srv.inner.ReadHeaderTimeout)
	}
	if srv.inner.WriteTimeout != timeouts.Write {
		t.Fatalf("expected write timeout %v got %v", timeouts.Write, srv.inner.WriteTimeout)
	}
	if srv.grace != timeouts.Shutdown {
		t.Fatalf("expected shutdown grace %v got %v", timeouts.Shutdown, srv.grace)
	}
}

func TestShutdownHonorsGrace(t *testing.T) {
	srv := New(0, http.NewServeMux(), Timeouts{Shutdown: time.Second})

	start := time.Now()
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("shutdown of an idle server took %v", elapsed)
	}
}
