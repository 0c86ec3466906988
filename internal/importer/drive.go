package importer

import (
	"context"

	"daybook/internal/errors"
	"daybook/internal/identity"
)

// DriveItem is one object in a cloud drive listing.
type DriveItem struct {
	ID     string
	Name   string
	Folder bool
}

// DriveClient abstracts the external drive API. Implementations wrap the
// provider SDK; tests use an in-memory tree.
type DriveClient interface {
	List(ctx context.Context, folderID string) ([]DriveItem, error)
	Download(ctx context.Context, fileID string) ([]byte, error)
}

// Chooser picks one item from a folder listing, typically by prompting the
// operator. Returning ok=false ends the walk with nothing imported.
type Chooser func(items []DriveItem) (DriveItem, bool)

// ImportDrive walks the drive from rootID, descending into whichever folder
// the chooser picks, until a file is chosen. The file runs through the same
// normalize and upsert path as a local file import.
func (imp *Importer) ImportDrive(ctx context.Context, client DriveClient, rootID string, choose Chooser) (Result, error) {
	folderID := rootID
	for {
		items, err := client.List(ctx, folderID)
		if err != nil {
			return Result{}, errors.NewUnavailable("drive", err)
		}
		if len(items) == 0 {
			return Result{}, nil
		}

		item, ok := choose(items)
		if !ok {
			return Result{}, nil
		}
		if item.Folder {
			folderID = item.ID
			continue
		}

		return imp.importDriveFile(ctx, client, item)
	}
}

func (imp *Importer) importDriveFile(ctx context.Context, client DriveClient, item DriveItem) (Result, error) {
	result := Result{Total: 1}

	if !Supported(item.Name) {
		imp.logger.Printf("skipping %s: unsupported file type", item.Name)
		result.Skipped++
		return result, nil
	}

	data, err := client.Download(ctx, item.ID)
	if err != nil {
		return result, errors.NewUnavailable("drive", err)
	}

	fr, err := imp.loadBytes(item.Name, data)
	if err != nil {
		return result, err
	}

	stored, err := imp.persist(identity.NewRunID(), "drive:"+item.ID, fr)
	if err != nil {
		return result, err
	}
	if stored {
		result.Success++
	} else {
		result.Skipped++
	}
	return result, nil
}
