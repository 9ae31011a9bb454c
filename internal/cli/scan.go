package cli

import (
	"encoding/base64"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/upforaride/server/internal/client"
)

func newScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan <image.jpg>",
		Short: "Read an odometer value from a photo via the server's OCR proxy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			api := client.New(apiBase)
			resp, err := api.RecognizeOdometer(cmd.Context(), base64.StdEncoding.EncodeToString(data))
			if err != nil {
				return err
			}

			if resp.Value == nil {
				if resp.Message != "" {
					fmt.Println(resp.Message)
				} else {
					fmt.Println("No odometer value recognized.")
				}
				return nil
			}

			fmt.Printf("Odometer reading: %d km (raw: %q)\n", *resp.Value, resp.RawText)
			return nil
		},
	}
}
