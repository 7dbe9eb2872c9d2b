package util

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetEnv(t *testing.T) {
	_ = os.Setenv("TEST_VAR", "TEST_VAL")
	actual := GetEnv("TEST_VAR", "OOPS")
	if actual != "TEST_VAL" {
		t.Errorf("start failed, expected %s, got %s", "TEST_VAL", actual)
	}
}

func TestGetEnvAsInt(t *testing.T) {
	_ = os.Setenv("TEST_VAR", "123")
	actual := GetEnvAsInt("TEST_VAR", 321)
	if actual != 123 {
		t.Errorf("start failed, expected %d, got %d", 123, actual)
	}
}

func TestIsASCII(t *testing.T) {
	require.True(t, IsASCII("Hello"))
	require.False(t, IsASCII("Привет"))
}

func TestFileExists(t *testing.T) {
	f, err := ioutil.TempFile(os.TempDir(), "util_test")
	if err != nil {
		t.Error(err)
	}
	defer func() {
		f.Close()
	}()

	require.True(t, FileExists(f.Name()))
}

func TestIsBlank(t *testing.T) {
	require.True(t, IsBlank(""))
	require.True(t, IsBlank("   "))
	require.False(t, IsBlank(" test  "))
}

func TestAsBool(t *testing.T) {
	require.True(t, AsBool("true", false))
	require.True(t, AsBool(" 1 ", false))
	require.False(t, AsBool("false", true))
	require.False(t, AsBool("", false))
	require.True(t, AsBool("nonsense", true))
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "abc", Truncate("abc", 5))
	require.Equal(t, "abc", Truncate("abcde", 3))
	require.Equal(t, "Прив", Truncate("Привет", 4))
}

func TestCollapseSpaces(t *testing.T) {
	require.Equal(t, "Acme Inc", CollapseSpaces("  Acme \t Inc  "))
	require.Equal(t, "", CollapseSpaces("   "))
}
