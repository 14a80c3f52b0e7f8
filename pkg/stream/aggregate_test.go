package stream

import (
	"errors"
	"strings"
	"testing"
)

func TestCollect(t *testing.T) {
	src := &fakeSource{lines: []string{
		`data: {"choices":[{"delta":{"content":"Hel"}}]}`,
		`data: {"choices":[{"delta":{"content":"lo"}}]}`,
		`: keep-alive`,
		`data: [DONE]`,
	}}

	agg, err := Collect(src)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if agg.Text != "Hello" {
		t.Errorf("text = %q, want Hello", agg.Text)
	}
	if agg.Media != nil {
		t.Errorf("media = %+v, want nil", agg.Media)
	}
	if !src.closed {
		t.Error("source not closed")
	}
}

func TestCollectMediaOnly(t *testing.T) {
	src := &fakeSource{lines: []string{
		`data: {"choices":[{"sa_resources":[{"type":"IMAGE","url":"http://x/y.png","size":1024}]}]}`,
		`data: [DONE]`,
	}}

	agg, err := Collect(src)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if agg.Media == nil || agg.Media.URL != "http://x/y.png" {
		t.Fatalf("media = %+v, want image url", agg.Media)
	}
	if !strings.Contains(agg.Content(), "![Generated Image](http://x/y.png)") {
		t.Errorf("content %q missing image markdown", agg.Content())
	}
	if len(agg.Resources) != 1 {
		t.Fatalf("got %d resources, want 1", len(agg.Resources))
	}
	if !strings.Contains(string(agg.Resources[0]), `"size":1024`) {
		t.Errorf("resource %s lost upstream fields", agg.Resources[0])
	}
}

func TestCollectAccumulatesResources(t *testing.T) {
	src := &fakeSource{lines: []string{
		`data: {"choices":[{"sa_resources":[{"type":"image","url":"http://x/1.png"}]}]}`,
		`data: {"choices":[{"sa_resources":[{"type":"image","url":"http://x/2.png"}]}]}`,
		`data: [DONE]`,
	}}

	agg, err := Collect(src)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(agg.Resources) != 2 {
		t.Fatalf("got %d resources, want 2", len(agg.Resources))
	}
	if !strings.Contains(string(agg.Resources[0]), "http://x/1.png") ||
		!strings.Contains(string(agg.Resources[1]), "http://x/2.png") {
		t.Errorf("resources out of order or lost: %s %s", agg.Resources[0], agg.Resources[1])
	}
	if agg.Media == nil || agg.Media.URL != "http://x/2.png" {
		t.Errorf("media = %+v, want last image", agg.Media)
	}
}

func TestCollectTextAfterMedia(t *testing.T) {
	src := &fakeSource{lines: []string{
		`data: {"choices":[{"delta":{"content":"before "}}]}`,
		`data: {"choices":[{"sa_resources":[{"type":"image","url":"http://x/a.png"}]}]}`,
		`data: {"choices":[{"delta":{"content":"after"}}]}`,
		`data: [DONE]`,
	}}

	agg, err := Collect(src)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if agg.Text != "before after" {
		t.Errorf("text = %q, want %q", agg.Text, "before after")
	}
	if agg.Media == nil {
		t.Fatal("media lost")
	}
}

func TestCollectEmpty(t *testing.T) {
	src := &fakeSource{lines: []string{`data: [DONE]`}}

	_, err := Collect(src)
	if !errors.Is(err, ErrEmptyReply) {
		t.Fatalf("err = %v, want ErrEmptyReply", err)
	}
}

func TestCollectRecvError(t *testing.T) {
	wantErr := errors.New("upstream gone")
	src := &fakeSource{
		lines: []string{`data: {"choices":[{"delta":{"content":"a"}}]}`},
		err:   wantErr,
	}

	_, err := Collect(src)
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
}
