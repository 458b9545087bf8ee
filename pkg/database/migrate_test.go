package database

import (
	"strings"
	"testing"
)

func TestLatestVersion(t *testing.T) {
	v, err := LatestVersion()
	if err != nil {
		t.Fatalf("LatestVersion 应成功: %v", err)
	}
	if v != 1 {
		t.Errorf("期望最新版本为 1，实际 %d", v)
	}
}

func TestMigrations_UpDownPaired(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		t.Fatalf("读取迁移目录失败: %v", err)
	}

	names := make(map[string]bool, len(entries))
	for _, e := range entries {
		names[e.Name()] = true
	}
	for name := range names {
		if strings.HasSuffix(name, ".up.sql") {
			down := strings.TrimSuffix(name, ".up.sql") + ".down.sql"
			if !names[down] {
				t.Errorf("%s 缺少对应的 %s", name, down)
			}
		}
	}
}
