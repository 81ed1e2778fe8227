package version

import (
	"testing"

	goversion "github.com/hashicorp/go-version"
	"github.com/stretchr/testify/require"
)

func TestDefaultVersionParses(t *testing.T) {
	_, err := goversion.NewVersion(Version)
	require.NoError(t, err)
}
