// Package deployments 嵌入部署相关文件到二进制
//
// migrations/*.sql 为 PostgreSQL 增量迁移脚本，按文件名顺序执行。
// postgres 驱动的 AutoMigrate 会依次应用这些脚本（幂等建表）。
package deployments

import (
	"embed"
	"fmt"
	"sort"
)

// MigrationFiles PostgreSQL 迁移脚本
//
//go:embed migrations/*.sql
var MigrationFiles embed.FS

// Migrations 按文件名升序返回全部迁移脚本内容
func Migrations() ([]string, error) {
	entries, err := MigrationFiles.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	scripts := make([]string, 0, len(names))
	for _, name := range names {
		data, err := MigrationFiles.ReadFile("migrations/" + name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		scripts = append(scripts, string(data))
	}
	return scripts, nil
}
