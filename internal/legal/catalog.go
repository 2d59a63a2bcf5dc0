package legal

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

//go:embed sections.yaml
var defaultCatalogYAML []byte

// Section describes a legal provision a suggestion can point at
type Section struct {
	Code  string `yaml:"code"`
	Act   string `yaml:"act"`
	Title string `yaml:"title"`
}

// Catalog resolves section codes to their act and title
type Catalog struct {
	DefaultAct string    `yaml:"default_act"`
	Sections   []Section `yaml:"sections"`

	byCode map[string]Section
}

// DefaultCatalog returns the built-in IPC catalog
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultCatalogYAML)
	if err != nil {
		panic(fmt.Sprintf("load sections.yaml: %v", err))
	}
	return c
}

// LoadCatalog reads a catalog file. An empty path yields the built-in catalog.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read legal catalog: %w", err)
	}
	return ParseCatalog(data)
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse legal catalog: %w", err)
	}
	if c.DefaultAct == "" {
		c.DefaultAct = "Indian Penal Code"
	}

	c.byCode = make(map[string]Section, len(c.Sections))
	for i, s := range c.Sections {
		code := Normalize(s.Code)
		if code == "" {
			return nil, fmt.Errorf("legal catalog entry %d has no code", i)
		}
		if s.Act == "" {
			s.Act = c.DefaultAct
		}
		s.Code = code
		c.Sections[i] = s
		c.byCode[strings.ToUpper(code)] = s
	}
	return &c, nil
}

// Lookup returns the section for code. Unknown codes keep the code and get
// the default act.
func (c *Catalog) Lookup(code string) (Section, bool) {
	code = Normalize(code)
	if s, ok := c.byCode[strings.ToUpper(code)]; ok {
		return s, true
	}
	return Section{Code: code, Act: c.DefaultAct}, false
}

// Normalize turns classifier output such as "379", "ipc379" or
// "Section 379" into "IPC 379". Codes with another act prefix are kept.
func Normalize(code string) string {
	code = strings.Join(strings.Fields(code), " ")
	if code == "" {
		return ""
	}

	upper := strings.ToUpper(code)
	for _, prefix := range []string{"SECTION ", "SEC. ", "SEC "} {
		if strings.HasPrefix(upper, prefix) {
			code = strings.TrimSpace(code[len(prefix):])
			upper = strings.ToUpper(code)
			break
		}
	}

	if unicode.IsDigit(rune(code[0])) {
		return "IPC " + upper
	}
	if strings.HasPrefix(upper, "IPC") {
		return "IPC " + strings.TrimSpace(upper[len("IPC"):])
	}
	return code
}
