package config

import (
	"reflect"
	"testing"
)

func TestDefaultConfigFromEnv(t *testing.T) {
	t.Setenv("JOBSCRAPER_ADDR", "127.0.0.1:9000")
	t.Setenv("JOBSCRAPER_DEFAULT_RESULTS", "40")

	cfg := DefaultConfig()
	if cfg.Addr != "127.0.0.1:9000" {
		t.Fatalf("addr = %q", cfg.Addr)
	}
	if cfg.DefaultResults != 40 {
		t.Fatalf("default results = %d", cfg.DefaultResults)
	}
}

func TestDefaultConfigIgnoresBadInt(t *testing.T) {
	t.Setenv("JOBSCRAPER_DEFAULT_RESULTS", "plenty")
	if got := DefaultConfig().DefaultResults; got != 25 {
		t.Fatalf("default results = %d, want fallback 25", got)
	}
}

func TestLoadProxiesFlagWins(t *testing.T) {
	t.Setenv("JOBSCRAPER_PROXIES", "http://env:8080")

	proxies, err := LoadProxies(" http://a:8080 , http://b:8080 ,")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := []string{"http://a:8080", "http://b:8080"}
	if !reflect.DeepEqual(proxies, want) {
		t.Fatalf("proxies = %v, want %v", proxies, want)
	}
}

func TestLoadProxiesFromEnv(t *testing.T) {
	t.Setenv("JOBSCRAPER_PROXIES", "http://env:8080")

	proxies, err := LoadProxies("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(proxies) != 1 || proxies[0] != "http://env:8080" {
		t.Fatalf("proxies = %v", proxies)
	}
}
