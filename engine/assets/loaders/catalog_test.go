package loaders

import (
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/regfile/engine/core"
	"github.com/spaghettifunk/regfile/engine/renderer/metadata"
)

const forwardCatalog = `
name = "forward"

[[buffers]]
name = "cbLighting"
global_offset = 4
bind_ps = true

  [[buffers.constants]]
  name = "ambient"
  type = "float3"
  default = [0.1, 0.2, 0.3]

  [[buffers.constants]]
  name = "enabled"
  type = "bool"
  default = [1.0]

  [[buffers.constants]]
  name = "lights"
  type = "Light"
  dimensions = [4]

[[types]]
name = "Light"

  [[types.constants]]
  name = "position"
  type = "float"
  columns = 3

  [[types.constants]]
  name = "flags"
  type = "bool2"

  [[types.constants]]
  name = "transform"
  type = "float4x3"
`

func TestParseCatalogComputesNaturalLayout(t *testing.T) {
	catalog, err := ParseCatalog("fallback", []byte(forwardCatalog))
	if err != nil {
		t.Fatalf("ParseCatalog: %v", err)
	}
	if catalog.Name != "forward" {
		t.Errorf("Name = %q, want forward", catalog.Name)
	}

	light := catalog.Types[0]
	// position 0..12, flags 12..14, transform 16..64 after 4-byte alignment.
	wantOffsets := []uint32{0, 12, 16}
	for i, want := range wantOffsets {
		if got := light.Constants[i].Offset; got != want {
			t.Errorf("Light.%s offset = %d, want %d", light.Constants[i].Name, got, want)
		}
	}
	if light.Length != 64 || light.Alignment != 4 {
		t.Errorf("Light length/alignment = %d/%d, want 64/4", light.Length, light.Alignment)
	}
	transform := light.Constants[2]
	if transform.Rows != 4 || transform.Columns != 3 || transform.ElementLength != 48 {
		t.Errorf("transform = %dx%d (%d bytes)", transform.Rows, transform.Columns, transform.ElementLength)
	}

	buffer := catalog.Buffers[0]
	if buffer.GlobalOffset != 4 || buffer.BindVS || !buffer.BindPS {
		t.Errorf("buffer binding = %+v", buffer)
	}
	lights := buffer.Constants[2]
	if !lights.IsUDT || lights.UDT != 0 || lights.Elements != 4 || lights.Offset != 16 || lights.TotalLength != 256 {
		t.Errorf("lights = %+v", lights)
	}
	if buffer.Length != 272 {
		t.Errorf("buffer length = %d, want 272", buffer.Length)
	}

	ambient := buffer.Constants[0]
	if len(ambient.Default) != 12 {
		t.Fatalf("ambient default is %d bytes, want 12", len(ambient.Default))
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(ambient.Default[4:])); got != float32(0.2) {
		t.Errorf("ambient.y default = %v", got)
	}
	if enabled := buffer.Constants[1]; enabled.Offset != 12 || len(enabled.Default) != 1 || enabled.Default[0] != 1 {
		t.Errorf("enabled = %+v", enabled)
	}
}

func TestParseCatalogErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{
			name: "unknown type",
			src:  "[[buffers]]\nname = \"cb\"\n[[buffers.constants]]\nname = \"x\"\ntype = \"half4\"\n",
			want: core.ErrUnknownType,
		},
		{
			name: "recursive type",
			src:  "[[types]]\nname = \"Node\"\n[[types.constants]]\nname = \"next\"\ntype = \"Node\"\n",
			want: core.ErrRecursiveType,
		},
		{
			name: "mutually recursive types",
			src: "[[types]]\nname = \"A\"\n[[types.constants]]\nname = \"b\"\ntype = \"B\"\n" +
				"[[types]]\nname = \"B\"\n[[types.constants]]\nname = \"a\"\ntype = \"A\"\n",
			want: core.ErrRecursiveType,
		},
		{
			name: "duplicate type",
			src:  "[[types]]\nname = \"A\"\n[[types]]\nname = \"A\"\n",
			want: core.ErrDuplicateDefinition,
		},
		{
			name: "too many defaults",
			src:  "[[buffers]]\nname = \"cb\"\n[[buffers.constants]]\nname = \"x\"\ntype = \"float2\"\ndefault = [1.0, 2.0, 3.0]\n",
			want: core.ErrInvalidDimensions,
		},
		{
			name: "oversized matrix",
			src:  "[[buffers]]\nname = \"cb\"\n[[buffers.constants]]\nname = \"x\"\ntype = \"float5x5\"\n",
			want: core.ErrInvalidDimensions,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseCatalog("test", []byte(tt.src)); !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCatalogLoaderReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deferred"+CatalogExtension)
	src := "[[buffers]]\nname = \"cbFrame\"\nbind_vs = true\n[[buffers.constants]]\nname = \"time\"\ntype = \"float\"\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	loader := &CatalogLoader{}
	res, err := loader.Load(path, metadata.ResourceTypeConstantCatalog, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	catalog, ok := res.Data.(*metadata.Catalog)
	if !ok {
		t.Fatalf("resource data is %T", res.Data)
	}
	if catalog.Name != "deferred" || res.Name != "deferred" {
		t.Errorf("catalog name = %q, resource name = %q", catalog.Name, res.Name)
	}
	if res.DataSize != uint64(len(src)) {
		t.Errorf("DataSize = %d, want %d", res.DataSize, len(src))
	}
	if err := loader.Unload(res); err != nil || res.Data != nil {
		t.Errorf("Unload left data behind: %v", err)
	}

	if _, err := loader.Load(path, metadata.ResourceTypeNone, nil); err == nil {
		t.Errorf("Load accepted the wrong resource type")
	}
}
