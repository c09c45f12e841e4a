package artifact

import (
	"fmt"
	"sort"
	"strings"
)

// docTitles maps artifact kinds to document headings.
var docTitles = map[string]string{
	KindAnalysis:     "分析レポート",
	KindConcept:      "コンセプト提案",
	KindRequirements: "要件定義書",
}

// fieldLabels maps known output keys to display labels. Unknown keys
// render with the raw key name.
var fieldLabels = map[string]string{
	"key_points":             "要点",
	"opportunities":          "機会",
	"challenges":             "課題",
	"recommendations":        "推奨事項",
	"strategic_moves":        "戦略的打ち手",
	"action_items":           "アクションアイテム",
	"risk_factors":           "リスク要因",
	"insights":               "インサイト",
	"risks":                  "リスク",
	"concepts":               "コンセプト候補",
	"title":                  "タイトル",
	"value_proposition":      "提供価値",
	"target_customer":        "ターゲット顧客",
	"advantage":              "優位性",
	"overview":               "概要",
	"features":               "主要機能",
	"target_users":           "想定ユーザー",
	"non_functional":         "非機能要件",
	"milestones":             "マイルストーン",
	"company_insights":       "自社インサイト",
	"customer_insights":      "顧客インサイト",
	"competitor_insights":    "競合インサイト",
	"product_insights":       "製品インサイト",
	"price_insights":         "価格インサイト",
	"place_insights":         "流通インサイト",
	"promotion_insights":     "販促インサイト",
	"political_insights":     "政治的インサイト",
	"economic_insights":      "経済的インサイト",
	"social_insights":        "社会的インサイト",
	"technological_insights": "技術的インサイト",
}

// Markdown renders the artifact as a structured-text document. The
// rendering is pure and deterministic: the same artifact always yields
// byte-identical output.
func Markdown(a *Artifact) string {
	var sb strings.Builder

	title, ok := docTitles[a.Kind]
	if !ok {
		title = a.Kind
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)

	for _, section := range a.Sections {
		fmt.Fprintf(&sb, "## %s\n\n", section.Title)
		for _, key := range bodyKeys(section) {
			renderField(&sb, key, section.Body[key])
		}
	}

	return strings.TrimRight(sb.String(), "\n") + "\n"
}

// bodyKeys returns the section's keys in render order: the declared
// order first, then any remaining keys alphabetically.
func bodyKeys(s Section) []string {
	seen := make(map[string]bool, len(s.Order))
	keys := make([]string, 0, len(s.Body))
	for _, key := range s.Order {
		if _, ok := s.Body[key]; ok {
			keys = append(keys, key)
			seen[key] = true
		}
	}

	var rest []string
	for key := range s.Body {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

func labelFor(key string) string {
	if label, ok := fieldLabels[key]; ok {
		return label
	}
	return key
}

func renderField(sb *strings.Builder, key string, value any) {
	switch v := value.(type) {
	case string:
		fmt.Fprintf(sb, "### %s\n\n%s\n\n", labelFor(key), v)
	case []any:
		if isObjectList(v) {
			renderObjectList(sb, key, v)
			return
		}
		fmt.Fprintf(sb, "### %s\n\n", labelFor(key))
		for _, item := range v {
			fmt.Fprintf(sb, "- %v\n", item)
		}
		sb.WriteString("\n")
	case map[string]any:
		fmt.Fprintf(sb, "### %s\n\n", labelFor(key))
		renderObjectFields(sb, v)
		sb.WriteString("\n")
	default:
		fmt.Fprintf(sb, "### %s\n\n%v\n\n", labelFor(key), v)
	}
}

// renderObjectList renders a list of structured items, one subheading
// per item. Items with a title field use it as the subheading.
func renderObjectList(sb *strings.Builder, key string, items []any) {
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		heading := labelFor(key)
		if title, ok := obj["title"].(string); ok && title != "" {
			heading = title
		}
		fmt.Fprintf(sb, "### %d. %s\n\n", i+1, heading)
		renderObjectFields(sb, withoutKey(obj, "title"))
		sb.WriteString("\n")
	}
}

// objectFieldOrder lists keys rendered first within a nested object.
var objectFieldOrder = []string{"value_proposition", "target_customer", "advantage"}

func renderObjectFields(sb *strings.Builder, obj map[string]any) {
	seen := make(map[string]bool)
	keys := make([]string, 0, len(obj))
	for _, key := range objectFieldOrder {
		if _, ok := obj[key]; ok {
			keys = append(keys, key)
			seen[key] = true
		}
	}
	var rest []string
	for key := range obj {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	keys = append(keys, rest...)

	for _, key := range keys {
		switch v := obj[key].(type) {
		case []any:
			fmt.Fprintf(sb, "- **%s**:\n", labelFor(key))
			for _, item := range v {
				fmt.Fprintf(sb, "  - %v\n", item)
			}
		default:
			fmt.Fprintf(sb, "- **%s**: %v\n", labelFor(key), v)
		}
	}
}

func isObjectList(items []any) bool {
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		if _, ok := item.(map[string]any); !ok {
			return false
		}
	}
	return true
}

func withoutKey(obj map[string]any, key string) map[string]any {
	out := make(map[string]any, len(obj))
	for k, v := range obj {
		if k != key {
			out[k] = v
		}
	}
	return out
}
