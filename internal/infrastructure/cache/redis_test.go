package cache

import (
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestOpenRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()

	r, err := OpenRedis(mr.Addr(), 0)
	if err != nil {
		t.Fatalf("OpenRedis: %v", err)
	}
	defer r.Close()
}

func TestOpenRedis_Unreachable(t *testing.T) {
	if _, err := OpenRedis("127.0.0.1:1", 0); err == nil {
		t.Fatal("expected connection error")
	}
}
