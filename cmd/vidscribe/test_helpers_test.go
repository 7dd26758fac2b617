package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"vidscribe/internal/media/wav"
	"vidscribe/internal/testsupport"
)

type cliTestEnv struct {
	baseDir    string
	root       string
	configPath string
	binDir     string
}

// setupCLITestEnv writes a config pointing at temp dirs and a fake Vosk
// server, and puts stub ffmpeg/ffprobe executables on PATH. The ffmpeg stub
// copies a one second silent WAV to its last argument.
func setupCLITestEnv(t *testing.T, voskURL string) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	home := filepath.Join(base, "home")
	if err := os.MkdirAll(home, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", home)
	t.Setenv("VOSK_SERVER_URL", "")

	root := filepath.Join(base, "videos")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("mkdir root: %v", err)
	}

	fixture := filepath.Join(base, "fixture.wav")
	if err := wav.WriteFile(fixture, 16000, 1, 16000); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	binDir := filepath.Join(base, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("mkdir bin: %v", err)
	}
	testsupport.WriteScript(t, binDir, "ffmpeg", fmt.Sprintf("for last; do :; done\ncase \"$last\" in *.wav) cp %q \"$last\" ;; *) exit 1 ;; esac\n", fixture))
	testsupport.WriteScript(t, binDir, "ffprobe",
		`echo '{"streams":[{"index":0,"codec_type":"audio","codec_name":"aac","channels":2}],"format":{"duration":"1.000000"}}'`+"\n")
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))

	configPath := filepath.Join(base, "vidscribe.toml")
	content := fmt.Sprintf(
		"[paths]\nroot_dir = %q\nlog_dir = %q\nstate_dir = %q\n\n[vosk]\nurl = %q\n\n[logging]\nlevel = \"error\"\n",
		root,
		filepath.Join(base, "logs"),
		filepath.Join(base, "state"),
		voskURL,
	)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return &cliTestEnv{baseDir: base, root: root, configPath: configPath, binDir: binDir}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

var upgrader = websocket.Upgrader{}

// newFakeVosk answers audio with partials and eof with "hello world" timed
// at 0.5-0.9 and 1.0-1.4 seconds.
func newFakeVosk(t *testing.T) string {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			msgType, payload, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if msgType == websocket.BinaryMessage {
				_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"partial" : ""}`))
				continue
			}
			var msg map[string]any
			if err := json.Unmarshal(payload, &msg); err != nil {
				return
			}
			if _, ok := msg["eof"]; ok {
				_ = conn.WriteMessage(websocket.TextMessage, []byte(
					`{"result":[{"conf":1,"start":0.5,"end":0.9,"word":"hello"},{"conf":1,"start":1.0,"end":1.4,"word":"world"}],"text":"hello world"}`))
			}
		}
	}))
	t.Cleanup(server.Close)
	return "ws" + strings.TrimPrefix(server.URL, "http")
}
