package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/allbin/ciscoreset/transport"
)

// portsCmd lists candidate serial devices, adapted from the teacher's
// list.go/info.go (minus the lipgloss table rendering, which belongs
// to the out-of-scope interactive TUI).
var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List candidate serial ports",
	Long: `List serial devices this tool would consider for --auto-detect:
/dev/ttyUSB*, /dev/ttyACM*, /dev/ttyS*, and the platform UART nodes
/dev/ttyAMA*, /dev/ttymxc*, /dev/ttyO*, /dev/ttySAC*, /dev/ttyTHS*,
with a short description of each.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ports, err := transport.ListPorts()
		if err != nil {
			return fmt.Errorf("listing ports: %w", err)
		}
		if len(ports) == 0 {
			fmt.Println("No serial ports found")
			return nil
		}

		for _, p := range ports {
			info, err := transport.GetPortInfo(p)
			if err != nil {
				fmt.Printf("%-20s (error describing port: %v)\n", p, err)
				continue
			}
			fmt.Printf("%-20s %s\n", info.Path, info.Description)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(portsCmd)
}
