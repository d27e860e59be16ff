package utils

import (
	"testing"
	"time"
)

func TestGetEnvDefaults(t *testing.T) {
	t.Setenv("PRINTSHOP_TEST_STR", "")
	if got := GetEnv("PRINTSHOP_TEST_STR", "fallback", nil); got != "fallback" {
		t.Fatalf("GetEnv: want=fallback got=%q", got)
	}
	t.Setenv("PRINTSHOP_TEST_STR", "set")
	if got := GetEnv("PRINTSHOP_TEST_STR", "fallback", nil); got != "set" {
		t.Fatalf("GetEnv: want=set got=%q", got)
	}
}

func TestGetEnvAsInt(t *testing.T) {
	t.Setenv("PRINTSHOP_TEST_INT", "nope")
	if got := GetEnvAsInt("PRINTSHOP_TEST_INT", 7, nil); got != 7 {
		t.Fatalf("unparseable: want=7 got=%d", got)
	}
	t.Setenv("PRINTSHOP_TEST_INT", " 42 ")
	if got := GetEnvAsInt("PRINTSHOP_TEST_INT", 7, nil); got != 42 {
		t.Fatalf("parsed: want=42 got=%d", got)
	}
}

func TestGetEnvAsBool(t *testing.T) {
	t.Setenv("PRINTSHOP_TEST_BOOL", "on")
	if !GetEnvAsBool("PRINTSHOP_TEST_BOOL", false, nil) {
		t.Fatalf("on: want=true")
	}
	t.Setenv("PRINTSHOP_TEST_BOOL", "maybe")
	if !GetEnvAsBool("PRINTSHOP_TEST_BOOL", true, nil) {
		t.Fatalf("unparseable: want default true")
	}
}

func TestGetEnvAsDuration(t *testing.T) {
	t.Setenv("PRINTSHOP_TEST_DUR", "90")
	if got := GetEnvAsDuration("PRINTSHOP_TEST_DUR", time.Second, nil); got != 90*time.Second {
		t.Fatalf("seconds: want=90s got=%s", got)
	}
	t.Setenv("PRINTSHOP_TEST_DUR", "15m")
	if got := GetEnvAsDuration("PRINTSHOP_TEST_DUR", time.Second, nil); got != 15*time.Minute {
		t.Fatalf("duration: want=15m got=%s", got)
	}
	t.Setenv("PRINTSHOP_TEST_DUR", "soon")
	if got := GetEnvAsDuration("PRINTSHOP_TEST_DUR", time.Second, nil); got != time.Second {
		t.Fatalf("fallback: want=1s got=%s", got)
	}
}
