package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_ProfileHash_Ignores_The_Port(t *testing.T) {
	req := require.New(t)

	first := ProfileHash("10.0.0.7:40512")
	second := ProfileHash("10.0.0.7:51998")
	bare := ProfileHash("10.0.0.7")

	req.Equal(first, second)
	req.Equal(first, bare)
	req.Len(first, 16)
}

func Test_ProfileHash_Distinguishes_Hosts(t *testing.T) {
	require.NotEqual(t, ProfileHash("10.0.0.7:40512"), ProfileHash("10.0.0.8:40512"))
}
