package stream_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitbundle/internal/stream"
)

func TestRewriteHeader(t *testing.T) {
	testCases := []struct {
		name           string
		header         string
		expectedOutput string
	}{
		{
			name:           "single_remote_reference",
			header:         "refs/remotes/origin/main",
			expectedOutput: "refs/heads/main",
		},
		{
			name:           "multiple_remote_references_on_one_line",
			header:         "refs/remotes/a/x refs/remotes/b/y",
			expectedOutput: "refs/heads/x refs/heads/y",
		},
		{
			name:           "references_across_lines",
			header:         "# v2 git bundle\nabc123 refs/remotes/origin/main\ndef456 refs/remotes/upstream/develop\n",
			expectedOutput: "# v2 git bundle\nabc123 refs/heads/main\ndef456 refs/heads/develop\n",
		},
		{
			name:           "local_references_untouched",
			header:         "abc123 refs/heads/main\n",
			expectedOutput: "abc123 refs/heads/main\n",
		},
		{
			name:           "empty_header",
			header:         "",
			expectedOutput: "",
		},
		{
			name:           "non_ascii_bytes_preserved",
			header:         "caf\xc3\xa9 refs/remotes/origin/f\xc3\xbchrung",
			expectedOutput: "caf\xc3\xa9 refs/heads/f\xc3\xbchrung",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			rewrittenHeader := stream.RewriteHeader([]byte(testCase.header))
			require.Equal(t, testCase.expectedOutput, string(rewrittenHeader))
		})
	}
}

func TestRewriteHeaderIsIdempotent(t *testing.T) {
	header := []byte("abc123 refs/remotes/origin/main\ndef456 refs/remotes/fork/topic\n")
	firstPass := stream.RewriteHeader(header)
	secondPass := stream.RewriteHeader(firstPass)
	require.Equal(t, string(firstPass), string(secondPass))
}
