// shop-admin is the catalog maintenance CLI: it uploads product images and
// links them as a product's main image, the part of the Moltin surface the
// bot itself never touches.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"fish-shop/internal/config"
	"fish-shop/internal/moltin"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}
	cfg := config.New()
	client := moltin.NewClient(cfg.MoltinBaseURL, cfg.MoltinClientID, cfg.MoltinClientSecret, nil)

	root := &cobra.Command{
		Use:           "shop-admin",
		Short:         "Maintain the fish shop catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newUploadCommand(client),
		newFilesCommand(client),
		newLinkCommand(client),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newUploadCommand(client *moltin.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <image-file>...",
		Short: "Upload public image files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				id, err := client.UploadFile(cmd.Context(), path)
				if err != nil {
					return err
				}
				fmt.Printf("%s\t%s\n", id, path)
			}
			return nil
		},
	}
}

func newFilesCommand(client *moltin.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "files",
		Short: "List uploaded files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := client.Files(cmd.Context())
			if err != nil {
				return err
			}
			for _, f := range files {
				fmt.Printf("%s\t%s\n", f.ID, f.FileName)
			}
			return nil
		},
	}
}

func newLinkCommand(client *moltin.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "link <product-id> <file-id>",
		Short: "Set a file as a product's main image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.LinkMainImage(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("linked %s -> %s\n", args[1], args[0])
			return nil
		},
	}
}
