package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
		ok   bool
	}{
		{name: "generated base64", body: `{"generatedImageBase64":"QQQQ"}`, want: "data:image/png;base64,QQQQ", ok: true},
		{name: "generated already prefixed", body: `{"generatedImageBase64":"data:image/jpeg;base64,QQ"}`, want: "data:image/jpeg;base64,QQ", ok: true},
		{name: "generated under data", body: `{"data":{"generatedImageBase64":"RR"}}`, want: "data:image/png;base64,RR", ok: true},
		{name: "generated beats urls", body: `{"urls":["http://x/y.png"],"generatedImageBase64":"QQ"}`, want: "data:image/png;base64,QQ", ok: true},
		{name: "urls first", body: `{"urls":["http://x/y.png"]}`, want: "http://x/y.png", ok: true},
		{name: "urls beat single fields", body: `{"urls":["http://x/y.png"],"image_base64":"ZZ","images":["http://z"]}`, want: "http://x/y.png", ok: true},
		{name: "empty urls falls through", body: `{"urls":[],"url":"https://a/b.webp"}`, want: "https://a/b.webp", ok: true},
		{name: "image_base64", body: `{"image_base64":"ZZZZ"}`, want: "data:image/png;base64,ZZZZ", ok: true},
		{name: "single field order", body: `{"url":"http://u","image":"IMG","base64":"B64"}`, want: "data:image/png;base64,B64", ok: true},
		{name: "image data uri verbatim", body: `{"image":"data:image/webp;base64,WW"}`, want: "data:image/webp;base64,WW", ok: true},
		{name: "images object url", body: `{"images":[{"url":"http://a/b.jpg"}]}`, want: "http://a/b.jpg", ok: true},
		{name: "images object base64", body: `{"images":[{"base64":"BB","image_base64":"CC"}]}`, want: "data:image/png;base64,BB", ok: true},
		{name: "images string", body: `{"images":["XX"]}`, want: "data:image/png;base64,XX", ok: true},
		{name: "images empty object ends walk", body: `[{"images":[{}]}]`, want: "", ok: false},
		{name: "duplicate key last wins", body: `{"generatedImageBase64":"OLD","generatedImageBase64":"NEW"}`, want: "data:image/png;base64,NEW", ok: true},
		{name: "duplicate nested key last wins", body: `{"images":[{"url":"http://a"}],"images":[{"url":"http://b"}]}`, want: "http://b", ok: true},
		{name: "top level array", body: `[{"url":"http://first"},{"url":"http://second"}]`, want: "http://first", ok: true},
		{name: "nested arrays", body: `[[{"image_base64":"NN"}]]`, want: "data:image/png;base64,NN", ok: true},
		{name: "non-string single field ignored", body: `{"image":{"nested":true},"url":"http://ok"}`, want: "http://ok", ok: true},
		{name: "empty object", body: `{}`, ok: false},
		{name: "empty array", body: `[]`, ok: false},
		{name: "null", body: `null`, ok: false},
		{name: "invalid json", body: `not json`, ok: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Image([]byte(tc.body))
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}
