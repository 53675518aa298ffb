package logs

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/troncosounlar-bit/legasync-flow/adapter/cli"
	"github.com/troncosounlar-bit/legasync-flow/adapter/cli/clitest"
	"github.com/troncosounlar-bit/legasync-flow/internal/dashboard/domain"
)

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var output strings.Builder
	cmd.SetContext(context.Background())
	cmd.SetOut(&output)
	err := cmd.RunE(cmd, args)
	return output.String(), err
}

func TestListCmd_NoApp(t *testing.T) {
	cli.SetApp(nil)
	_, err := execute(t, listCmd)
	assert.ErrorIs(t, err, cli.ErrNotInitialized)
}

func TestLogs(t *testing.T) {
	logType, logIcon = string(domain.LogInfo), "Bell"
	app := clitest.NewApp(t, nil)

	out, err := execute(t, listCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "No activity yet.")

	for i := 1; i <= 6; i++ {
		_, err := execute(t, addCmd, "nota "+strconv.Itoa(i))
		require.NoError(t, err)
	}

	out, err = execute(t, listCmd)
	require.NoError(t, err)
	assert.Equal(t, domain.RecentLimit, strings.Count(out, "\n"))
	assert.NotContains(t, out, "nota 1\n")

	entries, err := app.ActivityLog.RecentLogs(context.Background())
	require.NoError(t, err)
	require.NotNil(t, entries[0].UserID)
	assert.Equal(t, clitest.OperatorID, *entries[0].UserID)
}

func TestAddCmd_RejectsUnknownType(t *testing.T) {
	clitest.NewApp(t, nil)
	logType = "error"
	defer func() { logType = string(domain.LogInfo) }()

	_, err := execute(t, addCmd, "algo salió mal")
	assert.ErrorIs(t, err, domain.ErrInvalidLogType)
}
