package expand

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/example/hydrate/pkg/util/yamlx"
)

// Run expands a template text with values and returns the resulting text.
// Path is used to support {{ .Files }}.
// See https://golang.org/pkg/text/template/
func Run(environ []string, path string, text []byte, values yamlx.Values, customFn template.FuncMap) ([]byte, error) {
	env := OSEnvironment(environ)

	// get template functions
	functions := getDefaultFunctions()
	// override Sprig function to make sure a sanitized environment is used.
	functions["env"] = func(s string) string { return env[s] }
	functions["expandenv"] = func(s string) string { return "<expandenv is not supported>" }
	// add custom functions
	for n, f := range customFn {
		functions[n] = f
	}

	// params contains values and methods that are accessed via {{ .Values }} and {{ .Files }}
	var params = struct {
		Values yamlx.Values
		Files  Dir
	}{
		Values: values,
		Files:  Dir(filepath.Dir(path)),
	}

	return expand(path, text, functions, params)
}

// Expand expands a template text with functions and params and returns the resulting text.
// Missing keys result in an error.
func expand(path string, text []byte, functions template.FuncMap, params interface{}) ([]byte, error) {
	// Create template with functions and text.
	tmpl, err := template.New(filepath.Base(path)).Funcs(functions).Option("missingkey=error").Parse(string(text))
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	var out bytes.Buffer
	err = tmpl.Execute(&out, &params)
	if err != nil {
		return nil, fmt.Errorf("execute: %w", err)
	}

	return out.Bytes(), nil
}

// GetDefaultFunctions returns a map with functions that are commonly used in templates.
// It consists of Sprig (generic)functions and TOML,JSON,YAML conversion functions.
func getDefaultFunctions() template.FuncMap {
	answer := sprig.TxtFuncMap()

	// add extra functionality
	answer["toToml"] = toToml
	answer["toYaml"] = toYaml
	answer["fromYaml"] = fromYaml
	answer["toJson"] = toJson
	answer["fromJson"] = fromJson
	answer["indexOrDefault"] = indexOrDefault

	// add functions that sprig doesn't implement cross-platform (that don't work on windows)
	answer["filebase"] = filepath.Base
	answer["filedir"] = filepath.Dir
	answer["fileclean"] = filepath.Clean
	answer["fileext"] = filepath.Ext

	return answer
}

// IndexOrDefault returns the value at the keys path of v or def when the path
// does not resolve.
func indexOrDefault(def interface{}, v interface{}, keys ...string) interface{} {
	cur := v
	for _, k := range keys {
		m, ok := asValues(cur)
		if !ok {
			return def
		}
		cur, ok = m[k]
		if !ok {
			return def
		}
	}
	if cur == nil {
		return def
	}
	return cur
}

// AsValues returns v as Values when it is some kind of map.
func asValues(v interface{}) (yamlx.Values, bool) {
	switch m := v.(type) {
	case yamlx.Values:
		return m, true
	case map[string]interface{}:
		return m, true
	case map[interface{}]interface{}:
		// yaml.v2 produces this for nested objects.
		r := make(yamlx.Values, len(m))
		for k, val := range m {
			s, ok := k.(string)
			if !ok {
				continue
			}
			r[s] = val
		}
		return r, true
	}
	return nil, false
}

// OSEnvironment converts a []string with "key=value" items to a map["key"]="value".
func OSEnvironment(environ []string) map[string]string {
	result := make(map[string]string)
	for _, s := range environ {
		sl := strings.SplitN(s, "=", 2)
		if len(sl) != 2 {
			continue
		}
		result[sl[0]] = sl[1]
	}
	return result
}
