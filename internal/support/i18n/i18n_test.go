package i18n

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateAndMatch(t *testing.T) {
	m, err := NewManager()
	require.NoError(t, err)

	assert.Equal(t, []string{"en-US", "zh-CN"}, m.GetSupportedLanguages())
	assert.Equal(t, "成功", m.Translate(DefaultLang, "success"))
	assert.Equal(t, "success", m.Translate("en-US", "success"))
	assert.Equal(t, "暂未登录", m.Translate("fr-FR", "unauthorized"))
	assert.Equal(t, "missing.key", m.Translate("en-US", "missing.key"))

	assert.Equal(t, DefaultLang, m.Match())
	assert.Equal(t, DefaultLang, m.Match("zh"))
	assert.Equal(t, "en-US", m.Match("en-GB,en;q=0.8"))
	assert.Equal(t, DefaultLang, m.Match("not a tag!!"))
}

func TestLoadFromDirOverrides(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en-US.json"), []byte(`{"success":"ok"}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{`), 0o644))

	m, err := NewManager()
	require.NoError(t, err)
	require.NoError(t, m.LoadFromDir(dir))
	require.NoError(t, m.LoadFromDir(filepath.Join(dir, "missing")))

	assert.Equal(t, "ok", m.Translate("en-US", "success"))
	assert.Equal(t, "service error", m.Translate("en-US", "server_error"))
}
