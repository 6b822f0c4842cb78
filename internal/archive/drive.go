package archive

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const folderMimeType = "application/vnd.google-apps.folder"

// maxParallelUploads bounds concurrent file uploads into one folder.
const maxParallelUploads = 4

// fileStore is the subset of Drive operations the archiver needs.
type fileStore interface {
	// find returns the id of a non-trashed child of parent with the given name, or "".
	find(ctx context.Context, parent, name string, folder bool) (string, error)
	createFolder(ctx context.Context, parent, name string) (string, error)
	createFile(ctx context.Context, parent, name string, data []byte) error
	updateFile(ctx context.Context, id string, data []byte) error
}

// Drive archives folders under a root folder in Google Drive.
// Upload must not be called concurrently.
type Drive struct {
	store    fileStore
	rootName string
	rootID   string
}

// NewDrive creates a Drive archiver authenticated with a service-account credentials file.
// rootFolder is looked up by name (created when missing) on first upload.
func NewDrive(ctx context.Context, credentialsFile, rootFolder string) (*Drive, error) {
	svc, err := drive.NewService(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	return &Drive{store: &driveFiles{svc: svc}, rootName: rootFolder}, nil
}

// Upload ensures the lead folder exists under the root folder and upserts each file by name.
func (d *Drive) Upload(ctx context.Context, folderKey string, files map[string][]byte) error {
	rootID, err := d.root(ctx)
	if err != nil {
		return &Error{Folder: d.rootName, Message: "failed to resolve root folder", Cause: err}
	}

	folderID, err := d.ensureFolder(ctx, rootID, folderKey)
	if err != nil {
		return &Error{Folder: folderKey, Message: "failed to resolve folder", Cause: err}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelUploads)
	for _, name := range sortedNames(files) {
		name := name
		data := files[name]
		g.Go(func() error {
			return d.upsert(gctx, folderID, name, data)
		})
	}
	if err := g.Wait(); err != nil {
		return &Error{Folder: folderKey, Message: "failed to upload files", Cause: err}
	}
	return nil
}

func (d *Drive) root(ctx context.Context) (string, error) {
	if d.rootID != "" {
		return d.rootID, nil
	}
	id, err := d.ensureFolder(ctx, "root", d.rootName)
	if err != nil {
		return "", err
	}
	d.rootID = id
	return id, nil
}

func (d *Drive) ensureFolder(ctx context.Context, parent, name string) (string, error) {
	id, err := d.store.find(ctx, parent, name, true)
	if err != nil {
		return "", err
	}
	if id != "" {
		return id, nil
	}
	return d.store.createFolder(ctx, parent, name)
}

func (d *Drive) upsert(ctx context.Context, folderID, name string, data []byte) error {
	id, err := d.store.find(ctx, folderID, name, false)
	if err != nil {
		return fmt.Errorf("lookup %s: %w", name, err)
	}
	if id != "" {
		if err := d.store.updateFile(ctx, id, data); err != nil {
			return fmt.Errorf("update %s: %w", name, err)
		}
		return nil
	}
	if err := d.store.createFile(ctx, folderID, name, data); err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	return nil
}

// driveFiles implements fileStore with the Drive v3 API.
type driveFiles struct {
	svc *drive.Service
}

func (f *driveFiles) find(ctx context.Context, parent, name string, folder bool) (string, error) {
	q := fmt.Sprintf("name = '%s' and '%s' in parents and trashed = false", escapeQuery(name), escapeQuery(parent))
	if folder {
		q += fmt.Sprintf(" and mimeType = '%s'", folderMimeType)
	} else {
		q += fmt.Sprintf(" and mimeType != '%s'", folderMimeType)
	}

	list, err := f.svc.Files.List().Q(q).Fields("files(id, name)").PageSize(1).Context(ctx).Do()
	if err != nil {
		return "", err
	}
	if len(list.Files) == 0 {
		return "", nil
	}
	return list.Files[0].Id, nil
}

func (f *driveFiles) createFolder(ctx context.Context, parent, name string) (string, error) {
	created, err := f.svc.Files.Create(&drive.File{
		Name:     name,
		MimeType: folderMimeType,
		Parents:  []string{parent},
	}).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return created.Id, nil
}

func (f *driveFiles) createFile(ctx context.Context, parent, name string, data []byte) error {
	_, err := f.svc.Files.Create(&drive.File{
		Name:    name,
		Parents: []string{parent},
	}).Media(bytes.NewReader(data)).Fields("id").Context(ctx).Do()
	return err
}

func (f *driveFiles) updateFile(ctx context.Context, id string, data []byte) error {
	_, err := f.svc.Files.Update(id, &drive.File{}).Media(bytes.NewReader(data)).Fields("id").Context(ctx).Do()
	return err
}

// escapeQuery escapes a value for a Drive query string literal.
func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}
