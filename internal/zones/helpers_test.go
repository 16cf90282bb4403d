package zones

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func writeZoneAsset(t *testing.T, dir, id, spec string) {
	t.Helper()

	data := fmt.Sprintf(`{"version":1,"id":%q,"spec":%s}`, id, spec)
	if err := os.WriteFile(filepath.Join(dir, id+".json"), []byte(data), 0644); err != nil {
		t.Fatalf("failed to write zone asset: %v", err)
	}
}
