package autoupdate

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/plugfarm/plugfarm/internal/i18n"
)

// ShowUpdateSummary prints the pending updates, marketplaces first.
func ShowUpdateSummary(result *CheckResult) {
	if !result.HasAnyUpdate {
		fmt.Println(i18n.T("update.noUpdates", nil))
		return
	}

	fmt.Println()
	fmt.Println(i18n.T("update.available", nil))
	fmt.Println()
	printUpdates(i18n.T("update.typeMarketplace", nil), result.Marketplaces)
	printUpdates(i18n.T("update.typePlugin", nil), result.Plugins)
	fmt.Println()
}

func printUpdates(label string, updates []UpdateInfo) {
	for _, u := range updates {
		if !u.HasUpdate {
			continue
		}
		line := fmt.Sprintf("  [%s] %s", label, u.Name)
		if u.CurrentVer != "" || u.RemoteVer != "" {
			line += fmt.Sprintf(" (%s → %s)", u.CurrentVer, u.RemoteVer)
		}
		fmt.Println(line)
	}
}

// PromptUpdate asks whether to apply the pending updates. Empty input
// counts as yes.
func PromptUpdate(result *CheckResult) bool {
	if !result.HasAnyUpdate {
		return false
	}

	fmt.Print(i18n.T("update.prompt", nil) + " [Y/n] ")

	input, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	switch strings.TrimSpace(strings.ToLower(input)) {
	case "", "y", "yes":
		return true
	}
	return false
}
