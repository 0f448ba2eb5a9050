package editorial

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/iamwhitegod/arena/internal/ports"
)

// extractJSONObject strips markdown fences and takes the first JSON object
// in the model's response. Some providers wrap JSON in code fences even
// when asked not to.
func extractJSONObject(s string) (string, error) {
	t := strings.TrimSpace(s)
	if t == "" {
		return "", errors.New("empty content")
	}

	if strings.HasPrefix(t, "```") {
		if i := strings.Index(t, "\n"); i >= 0 {
			t = t[i+1:]
		}
		if j := strings.LastIndex(t, "```"); j >= 0 {
			t = t[:j]
		}
		t = strings.TrimSpace(t)
	}

	start := strings.Index(t, "{")
	end := strings.LastIndex(t, "}")
	if start >= 0 && end > start {
		return t[start : end+1], nil
	}
	return "", fmt.Errorf("no JSON object in %q", truncate(t, 200))
}

func parseObject(content string) (gjson.Result, error) {
	clean, err := extractJSONObject(content)
	if err != nil {
		return gjson.Result{}, &ports.ParseError{Msg: "locate JSON object", Err: err}
	}
	if !gjson.Valid(clean) {
		return gjson.Result{}, &ports.ParseError{Msg: "invalid JSON in response"}
	}
	return gjson.Parse(clean), nil
}

func requireNumber(doc gjson.Result, path string) (float64, error) {
	v := doc.Get(path)
	if !v.Exists() || v.Type != gjson.Number {
		return 0, &ports.ParseError{Msg: fmt.Sprintf("missing or non-numeric field %q", path)}
	}
	return v.Float(), nil
}

func requireString(doc gjson.Result, path string) (string, error) {
	v := doc.Get(path)
	if !v.Exists() || v.Type != gjson.String {
		return "", &ports.ParseError{Msg: fmt.Sprintf("missing or non-string field %q", path)}
	}
	return v.String(), nil
}

func requireBool(doc gjson.Result, path string) (bool, error) {
	v := doc.Get(path)
	if v.Type != gjson.True && v.Type != gjson.False {
		return false, &ports.ParseError{Msg: fmt.Sprintf("missing or non-boolean field %q", path)}
	}
	return v.Bool(), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
