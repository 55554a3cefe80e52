package validator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsValidAddress(t *testing.T) {
	req := require.New(t)
	req.True(IsValidAddress("0xbc4ca0eda7647a8ab7c2061c2e118a18a936f13d"))
	req.True(IsValidAddress("0xBC4CA0EdA7647A8aB7C2061c2E118A18a936f13D"))
	req.False(IsValidAddress("0x1234"))
	req.False(IsValidAddress("not-an-address"))
}
