package main

import (
	"fmt"
	"os"

	"github.com/junaidrashid-git/pawshop-api/catalog"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	exportPath string
	importPath string
)

var exportCmd = &cobra.Command{
	Use:   "export-products",
	Short: "Write the catalog to an Excel workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, done, err := catalogOnly(cmd)
		if err != nil {
			return err
		}
		defer done()

		f, err := os.Create(exportPath)
		if err != nil {
			return err
		}
		if err := svc.ExportXLSX(cmd.Context(), f); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		logger.Info("products exported", zap.String("path", exportPath))
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import-products",
	Short: "Create or update products from an Excel workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, done, err := catalogOnly(cmd)
		if err != nil {
			return err
		}
		defer done()

		f, err := os.Open(importPath)
		if err != nil {
			return err
		}
		defer f.Close()
		info, err := f.Stat()
		if err != nil {
			return err
		}
		res, err := svc.ImportXLSX(cmd.Context(), f, info.Size())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %d, updated %d, skipped %d\n", res.Created, res.Updated, res.Skipped)
		return nil
	},
}

// catalogOnly opens just the database and image store.
func catalogOnly(cmd *cobra.Command) (*catalog.Service, func(), error) {
	db, err := initDatabase(cfg)
	if err != nil {
		return nil, nil, err
	}
	images, _, err := buildImageStore(cmd.Context(), cfg)
	if err != nil {
		_ = closeDatabase(db)
		return nil, nil, err
	}
	return catalog.NewService(db, images, logger), func() { _ = closeDatabase(db) }, nil
}
