//go:build integration

package dot

import (
	"context"
	"strings"
	"testing"
)

func TestRenderSVG(t *testing.T) {
	out, err := RenderSVG(context.Background(), ToDOT(snapshot(), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	s := string(out)
	if !strings.HasPrefix(strings.TrimSpace(s[strings.Index(s, "<svg"):]), `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 `) {
		t.Errorf("svg tag not normalized: %.200s", s)
	}
	if !strings.Contains(s, "Grace") {
		t.Error("label missing from output")
	}
}
