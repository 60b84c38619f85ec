package memory_test

import (
	"testing"

	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports/tests"
)

func TestMemoryLoader_Contract(t *testing.T) {
	loader := memory.NewLoader(map[string]domain.Element{
		"home":  domain.H("main", nil, "Welcome"),
		"about": domain.H("article", nil),
	})
	tests.ViewLoaderContractTest(t, loader, map[string]string{
		"home":  "main",
		"about": "article",
	})
}
