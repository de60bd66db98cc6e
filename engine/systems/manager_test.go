package systems

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spaghettifunk/regfile/engine/core"
)

const frameCatalog = `
name = "frame"

[[buffers]]
name = "cbFrame"
bind_vs = true

  [[buffers.constants]]
  name = "time"
  type = "float"

  [[buffers.constants]]
  name = "viewProjection"
  type = "float4x4"
`

func TestSystemManagerLinksLoadedCatalogs(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "frame.cbcat"), []byte(frameCatalog), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg := core.DefaultConfig()
	cfg.Jobs.Workers = 2
	sm, err := NewSystemManager(cfg)
	if err != nil {
		t.Fatalf("NewSystemManager: %v", err)
	}
	defer sm.Shutdown()

	if err := sm.LoadCatalogs(dir, false); err != nil {
		t.Fatalf("LoadCatalogs: %v", err)
	}

	decl, err := sm.ConstantBufferSystem().Declarations("frame")
	if err != nil {
		t.Fatalf("Declarations: %v", err)
	}
	if !strings.Contains(decl, "viewProjection : register(c1);") {
		t.Errorf("declarations =\n%s", decl)
	}

	ref, err := sm.ConstantBufferSystem().CreateBuffer("frame", "cbFrame", "")
	if err != nil {
		t.Fatalf("CreateBuffer: %v", err)
	}
	if ref.Buffer.Layout().RegisterCount != 5 {
		t.Errorf("RegisterCount = %d, want 5", ref.Buffer.Layout().RegisterCount)
	}
}
