// Package extract locates the generated image inside a try-on service
// response whose schema is not fixed.
package extract

import (
	"strings"

	"github.com/tidwall/gjson"
)

const pngPrefix = "data:image/png;base64,"

// rule inspects a response value. matched=true ends the walk, even when uri is
// empty, so the order of rules decides which shape wins.
type rule func(v gjson.Result) (uri string, matched bool)

var rules []rule

func init() {
	rules = []rule{
		generatedBase64,
		firstURL,
		singleValueField,
		firstImage,
		firstArrayElement,
	}
}

// Image returns the displayable image URI found in body, or false.
func Image(body []byte) (string, bool) {
	if !gjson.ValidBytes(body) {
		return "", false
	}
	return Value(gjson.ParseBytes(body))
}

// Value walks an already-parsed JSON value.
func Value(v gjson.Result) (string, bool) {
	if !truthy(v) {
		return "", false
	}
	for _, r := range rules {
		if uri, matched := r(v); matched {
			return uri, uri != ""
		}
	}
	return "", false
}

// generatedBase64 reads generatedImageBase64 at the top level or under data.
func generatedBase64(v gjson.Result) (string, bool) {
	direct := field(v, "generatedImageBase64")
	if !truthy(direct) {
		direct = field(field(v, "data"), "generatedImageBase64")
	}
	if direct.Type != gjson.String || direct.Str == "" {
		return "", false
	}
	if strings.HasPrefix(direct.Str, "data:") {
		return direct.Str, true
	}
	return pngPrefix + direct.Str, true
}

func firstURL(v gjson.Result) (string, bool) {
	urls := field(v, "urls")
	if !urls.IsArray() || len(urls.Array()) == 0 {
		return "", false
	}
	first := urls.Array()[0]
	if first.Type != gjson.String {
		return "", true
	}
	return first.Str, true
}

func singleValueField(v gjson.Result) (string, bool) {
	for _, key := range []string{"image_base64", "base64", "image", "url"} {
		if uri := asImageURI(field(v, key)); uri != "" {
			return uri, true
		}
	}
	return "", false
}

func firstImage(v gjson.Result) (string, bool) {
	images := field(v, "images")
	if !images.IsArray() {
		return "", false
	}
	all := images.Array()
	if len(all) == 0 {
		return "", false
	}
	first := all[0]
	switch {
	case first.Type == gjson.String:
		return asImageURI(first), true
	case first.IsObject():
		for _, key := range []string{"url", "base64", "image_base64"} {
			if uri := asImageURI(field(first, key)); uri != "" {
				return uri, true
			}
		}
		return "", true
	default:
		return "", false
	}
}

func firstArrayElement(v gjson.Result) (string, bool) {
	if !v.IsArray() {
		return "", false
	}
	all := v.Array()
	if len(all) == 0 {
		return "", false
	}
	uri, _ := Value(all[0])
	return uri, true
}

// field returns the value of key in object v. When a key is repeated the last
// occurrence wins, as with a standard JSON.parse; gjson's Get would return the
// first.
func field(v gjson.Result, key string) gjson.Result {
	var out gjson.Result
	if !v.IsObject() {
		return out
	}
	v.ForEach(func(k, val gjson.Result) bool {
		if k.Str == key {
			out = val
		}
		return true
	})
	return out
}

// asImageURI returns URLs and data URIs verbatim and treats any other
// non-empty string as raw PNG base64.
func asImageURI(v gjson.Result) string {
	if v.Type != gjson.String || v.Str == "" {
		return ""
	}
	if strings.HasPrefix(v.Str, "http") || strings.HasPrefix(v.Str, "data:") {
		return v.Str
	}
	return pngPrefix + v.Str
}

// truthy mirrors the loose presence checks the upstream contract was written
// against: missing, null, false, 0 and "" are all absent.
func truthy(v gjson.Result) bool {
	switch v.Type {
	case gjson.Null:
		return false
	case gjson.False:
		return false
	case gjson.Number:
		return v.Num != 0
	case gjson.String:
		return v.Str != ""
	default:
		return v.Exists()
	}
}
