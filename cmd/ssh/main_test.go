package main

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tridxis/price-agent/internal/config"
	"github.com/tridxis/price-agent/internal/provider"

	"github.com/charmbracelet/ssh"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	gossh "golang.org/x/crypto/ssh"
)

func TestMainBootstrap(t *testing.T) {
	restore := stubSSHDeps()
	defer restore()

	done := make(chan struct{})
	go func() {
		main()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("main did not exit")
	}
}

func TestMainBootstrapWithAuthorizedKeys(t *testing.T) {
	restore := stubSSHDeps()
	defer restore()

	key := genTestKey(t)
	var loadedPath string
	loadAuthorizedKeysFunc = func(path string) ([]ssh.PublicKey, error) {
		loadedPath = path
		return []ssh.PublicKey{key}, nil
	}
	var optCount int
	newWishServerFunc = func(ops ...ssh.Option) (*ssh.Server, error) {
		optCount = len(ops)
		return nil, nil
	}
	loadConfigFunc = func() *config.Config {
		return &config.Config{
			SSHPort:           2222,
			SSHHostKeyPath:    ".ssh/test_key",
			SSHAuthorizedKeys: "/etc/price-agent/authorized_keys",
		}
	}

	done := make(chan struct{})
	go func() {
		main()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("main did not exit")
	}

	if loadedPath != "/etc/price-agent/authorized_keys" {
		t.Fatalf("expected authorized keys loaded from config path, got %q", loadedPath)
	}
	if optCount != 4 {
		t.Fatalf("expected address, host key, auth and middleware options, got %d", optCount)
	}
}

func TestLoadAuthorizedKeys(t *testing.T) {
	keyA := genTestKey(t)
	keyB := genTestKey(t)

	var buf bytes.Buffer
	buf.WriteString("# console operators\n\n")
	buf.Write(gossh.MarshalAuthorizedKey(keyA))
	buf.Write(gossh.MarshalAuthorizedKey(keyB))

	path := filepath.Join(t.TempDir(), "authorized_keys")
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatalf("write keys file: %v", err)
	}

	keys, err := loadAuthorizedKeys(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %d", len(keys))
	}
	if !ssh.KeysEqual(keys[0], keyA) || !ssh.KeysEqual(keys[1], keyB) {
		t.Fatal("parsed keys do not match the file contents")
	}
}

func TestLoadAuthorizedKeysMissingFile(t *testing.T) {
	if _, err := loadAuthorizedKeys(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadAuthorizedKeysRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "authorized_keys")
	if err := os.WriteFile(path, []byte("not a key\n"), 0o600); err != nil {
		t.Fatalf("write keys file: %v", err)
	}
	if _, err := loadAuthorizedKeys(path); err == nil {
		t.Fatal("expected error for malformed file")
	}
}

func genTestKey(t *testing.T) ssh.PublicKey {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	key, err := gossh.NewPublicKey(pub)
	if err != nil {
		t.Fatalf("wrap key: %v", err)
	}
	return key
}

func stubSSHDeps() func() {
	origLoadEnv := loadEnvFunc
	origLoadConfig := loadConfigFunc
	origInitPostgres := initPostgresFunc
	origInitRedis := initRedisFunc
	origInitTracer := initTracerFunc
	origNewProvider := newProviderFunc
	origLoadKeys := loadAuthorizedKeysFunc
	origNewWishServer := newWishServerFunc
	origSetupSignal := setupSignalNotify
	origWait := waitForSignalFunc

	loadEnvFunc = func(...string) error { return nil }
	loadConfigFunc = func() *config.Config {
		return &config.Config{
			RedisURL:       "",
			DatabaseURL:    "",
			SSHPort:        2222,
			SSHHostKeyPath: ".ssh/test_key",
		}
	}
	initPostgresFunc = func(context.Context) {}
	initRedisFunc = func(context.Context) {}
	initTracerFunc = func(ctx context.Context) (*sdktrace.TracerProvider, trace.Tracer, error) {
		tp := sdktrace.NewTracerProvider()
		return tp, tp.Tracer("test"), nil
	}
	newProviderFunc = func(tracer trace.Tracer, _ provider.HuggingFaceConfig) *provider.HuggingFaceProvider {
		return provider.NewHuggingFaceProvider(tracer, provider.HuggingFaceConfig{})
	}
	loadAuthorizedKeysFunc = func(string) ([]ssh.PublicKey, error) { return nil, nil }
	newWishServerFunc = func(ops ...ssh.Option) (*ssh.Server, error) {
		return nil, nil
	}
	setupSignalNotify = func(c chan<- os.Signal, sig ...os.Signal) {}
	waitForSignalFunc = func(<-chan os.Signal) {}

	return func() {
		loadEnvFunc = origLoadEnv
		loadConfigFunc = origLoadConfig
		initPostgresFunc = origInitPostgres
		initRedisFunc = origInitRedis
		initTracerFunc = origInitTracer
		newProviderFunc = origNewProvider
		loadAuthorizedKeysFunc = origLoadKeys
		newWishServerFunc = origNewWishServer
		setupSignalNotify = origSetupSignal
		waitForSignalFunc = origWait
	}
}
