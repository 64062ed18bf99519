package main

import (
	"context"
	"fmt"
	"os"

	"motion_security/internal/config"
	"motion_security/internal/logger"
	"motion_security/internal/recognizer"

	"github.com/spf13/cobra"
)

var (
	regName  string
	regColor string
	regImage string
	regForce bool

	registerCmd = &cobra.Command{
		Use:   "register",
		Short: "Register a face with a preferred light colour.",
		Long: `Stores the image under recognizer.registered_dir as
<name>_<color>_<YYYYmmdd_HHMMSS>.jpg after checking that it contains a face.
Unsupported colours are refused unless --force is given; they show as gray.
A running service picks the new face up on its next cache refresh or on
POST /api/v1/identities/reload.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := runRegister(cmd.Context(), configPath, regName, regColor, regImage, regForce)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "registered %s (%s): %s\n", regName, regColor, path)
			return nil
		},
	}
)

func runRegister(ctx context.Context, cfgPath, name, color, imagePath string, force bool) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return "", err
	}
	img, err := os.ReadFile(imagePath)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	log := logger.Get(cfg.LogLevel)
	src := recognizer.NewDirSource(cfg.Recognizer.RegisteredDir, recognizer.NewHTTPEncoder(cfg.Recognizer), log.Named("registry"))
	return src.Register(ctx, name, color, img, force)
}

func init() {
	registerCmd.Flags().StringVar(&regName, "name", "", "name of the person")
	registerCmd.Flags().StringVar(&regColor, "color", "white", "preferred light colour")
	registerCmd.Flags().StringVar(&regImage, "image", "", "path to a photo containing the face")
	registerCmd.Flags().BoolVar(&regForce, "force", false, "accept colours outside the supported list")
	_ = registerCmd.MarkFlagRequired("name")
	_ = registerCmd.MarkFlagRequired("image")
}
