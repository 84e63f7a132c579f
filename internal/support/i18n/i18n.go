// 文件路径: internal/support/i18n/i18n.go
// 模块说明: 响应信封 msg 字段的多语言文案，默认简体中文。
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/language"
)

//go:embed locales/*.json
var embeddedLocales embed.FS

// DefaultLang 没有任何语言偏好时使用的语言。
const DefaultLang = "zh-CN"

// Manager 管理翻译内容。
type Manager struct {
	defaultLang  string
	translations map[string]map[string]string
	matcher      language.Matcher
	tags         []language.Tag
	logger       *slog.Logger
	mu           sync.RWMutex
}

// Option 用于配置 Manager。
type Option func(*Manager)

// WithLogger 设置 Manager 使用的日志实例。
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithDefaultLang 设置默认语言。
func WithDefaultLang(lang string) Option {
	return func(m *Manager) {
		m.defaultLang = lang
	}
}

// NewManager 创建 i18n Manager。
func NewManager(opts ...Option) (*Manager, error) {
	m := &Manager{
		defaultLang:  DefaultLang,
		translations: make(map[string]map[string]string),
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if err := m.loadEmbeddedTranslations(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) loadEmbeddedTranslations() error {
	entries, err := embeddedLocales.ReadDir("locales")
	if err != nil {
		return fmt.Errorf("failed to read locales directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := embeddedLocales.ReadFile("locales/" + entry.Name())
		if err != nil {
			return fmt.Errorf("failed to read locale file %s: %w", entry.Name(), err)
		}
		var content map[string]string
		if err := json.Unmarshal(data, &content); err != nil {
			return fmt.Errorf("failed to unmarshal locale file %s: %w", entry.Name(), err)
		}
		m.merge(strings.TrimSuffix(entry.Name(), ".json"), content)
	}
	return nil
}

// LoadFromDir 从外部目录加载翻译文件，同名键覆盖内置文案。
func (m *Manager) LoadFromDir(dir string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read external locales directory: %w", err)
	}
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, file.Name()))
		if err != nil {
			m.logger.Warn("failed to read external locale file", "file", file.Name(), "error", err)
			continue
		}
		var content map[string]string
		if err := json.Unmarshal(data, &content); err != nil {
			m.logger.Warn("failed to unmarshal external locale file", "file", file.Name(), "error", err)
			continue
		}
		m.merge(strings.TrimSuffix(file.Name(), ".json"), content)
	}
	return nil
}

func (m *Manager) merge(lang string, content map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.translations[lang]; !exists {
		m.translations[lang] = make(map[string]string)
	}
	for k, v := range content {
		m.translations[lang][k] = v
	}
	m.rebuildMatcher()
}

// rebuildMatcher 需在持有写锁时调用；默认语言排在首位作为匹配兜底。
func (m *Manager) rebuildMatcher() {
	langs := make([]string, 0, len(m.translations))
	for lang := range m.translations {
		if lang != m.defaultLang {
			langs = append(langs, lang)
		}
	}
	sort.Strings(langs)
	langs = append([]string{m.defaultLang}, langs...)
	m.tags = m.tags[:0]
	for _, lang := range langs {
		m.tags = append(m.tags, language.Make(lang))
	}
	m.matcher = language.NewMatcher(m.tags)
}

// Match 把任意语言偏好（单个标签或 Accept-Language 头）解析为已加载的语言。
func (m *Manager) Match(preferences ...string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var wanted []language.Tag
	for _, pref := range preferences {
		if strings.TrimSpace(pref) == "" {
			continue
		}
		tags, _, err := language.ParseAcceptLanguage(pref)
		if err != nil {
			continue
		}
		wanted = append(wanted, tags...)
	}
	if len(wanted) == 0 || m.matcher == nil {
		return m.defaultLang
	}
	_, idx, confidence := m.matcher.Match(wanted...)
	if confidence == language.No {
		return m.defaultLang
	}
	return m.tags[idx].String()
}

// Translate 按语言与键名返回翻译内容，找不到时回退默认语言，再回退为 key 本身。
func (m *Manager) Translate(lang, key string, args ...any) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if tag, err := language.Parse(lang); err == nil {
		lang = tag.String()
	}
	for _, candidate := range []string{lang, m.defaultLang} {
		if trans, ok := m.translations[candidate]; ok {
			if val, ok := trans[key]; ok {
				if len(args) > 0 {
					return fmt.Sprintf(val, args...)
				}
				return val
			}
		}
	}
	return key
}

// GetSupportedLanguages 返回支持的语言列表。
func (m *Manager) GetSupportedLanguages() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	langs := make([]string, 0, len(m.translations))
	for k := range m.translations {
		langs = append(langs, k)
	}
	sort.Strings(langs)
	return langs
}
