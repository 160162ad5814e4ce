package memory_test

import (
	"testing"

	"github.com/aretw0/heimer/pkg/adapters/memory"
	"github.com/aretw0/heimer/pkg/ports/tests"
)

func TestSettings_Contract(t *testing.T) {
	tests.RunSettingsStoreContract(t, memory.NewSettings())
}
