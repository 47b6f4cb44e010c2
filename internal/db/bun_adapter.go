// Copyright (c) 2026 Keysafe Team
// Keysafe - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/toeirei/keysafe/internal/model"
	"github.com/uptrace/bun"
)

// masterID is the fixed primary key of the single master credential row.
const masterID = 1

// FolderModel maps the `folders` table for Bun queries.
type FolderModel struct {
	bun.BaseModel `bun:"table:folders"`
	ID            int           `bun:"id,pk,autoincrement"`
	ParentID      sql.NullInt64 `bun:"parent_id"`
	Name          string        `bun:"name,notnull"`
}

// ItemModel maps the `items` table. Text columns are nullable.
type ItemModel struct {
	bun.BaseModel `bun:"table:items"`
	ID            int            `bun:"id,pk,autoincrement"`
	FolderID      int            `bun:"folder_id,notnull"`
	Title         sql.NullString `bun:"title"`
	Username      sql.NullString `bun:"username"`
	Password      sql.NullString `bun:"password"`
	URL           sql.NullString `bun:"url"`
	Notes         sql.NullString `bun:"notes"`
}

// MasterModel maps the `master` table.
type MasterModel struct {
	bun.BaseModel `bun:"table:master"`
	ID            int    `bun:"id,pk"`
	Password      string `bun:"password,notnull"`
}

// --- Mapping helpers ---

func folderModelToModel(f FolderModel) model.Folder {
	out := model.Folder{ID: f.ID, Name: f.Name}
	if f.ParentID.Valid {
		out.ParentID = model.IntPtr(int(f.ParentID.Int64))
	}
	return out
}

func parentToNull(parentID *int) sql.NullInt64 {
	if parentID == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*parentID), Valid: true}
}

// itemModelToModel converts NULL columns to empty strings.
func itemModelToModel(i ItemModel) model.Item {
	return model.Item{
		ID:       i.ID,
		FolderID: i.FolderID,
		ItemFields: model.ItemFields{
			Title:    i.Title.String,
			Username: i.Username.String,
			Password: i.Password.String,
			URL:      i.URL.String,
			Notes:    i.Notes.String,
		},
	}
}

func fieldsToItemModel(folderID int, f model.ItemFields) *ItemModel {
	str := func(s string) sql.NullString { return sql.NullString{String: s, Valid: true} }
	return &ItemModel{
		FolderID: folderID,
		Title:    str(f.Title),
		Username: str(f.Username),
		Password: str(f.Password),
		URL:      str(f.URL),
		Notes:    str(f.Notes),
	}
}

// BunStore is the Bun implementation of Store for every supported dialect.
type BunStore struct {
	bun    *bun.DB
	dbType string
}

// BunDB exposes the underlying *bun.DB for tests and maintenance.
func (s *BunStore) BunDB() *bun.DB { return s.bun }

// Type returns the database type the store was opened with.
func (s *BunStore) Type() string { return s.dbType }

// Close closes the underlying connection pool.
func (s *BunStore) Close() error {
	return wrapErr("close", s.bun.Close())
}

// Initialize applies pending migrations and creates the root folder when the
// vault holds no folder at all.
func (s *BunStore) Initialize(ctx context.Context, rootName string) error {
	if err := RunMigrations(s.bun.DB, s.dbType); err != nil {
		return wrapErr("initialize", err)
	}
	if rootName == "" {
		rootName = DefaultRootName
	}
	err := WithTx(ctx, s.bun, func(ctx context.Context, tx bun.Tx) error {
		n, err := tx.NewSelect().Model((*FolderModel)(nil)).Count(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		root := &FolderModel{Name: rootName}
		if _, err := tx.NewInsert().Model(root).Column("parent_id", "name").Returning("id").Exec(ctx); err != nil {
			return err
		}
		dbLogf("db: created root folder %q (id %d)", rootName, root.ID)
		return nil
	})
	return wrapErr("initialize", err)
}

// --- Folders ---

// CreateFolder inserts a folder and returns its id.
func (s *BunStore) CreateFolder(ctx context.Context, parentID *int, name string) (int, error) {
	fm := &FolderModel{ParentID: parentToNull(parentID), Name: name}
	// Insert only the columns we set and let the DB assign the id.
	if _, err := s.bun.NewInsert().Model(fm).Column("parent_id", "name").Returning("id").Exec(ctx); err != nil {
		return 0, wrapErr("create folder", err)
	}
	return fm.ID, nil
}

// RenameFolder updates a folder's name.
func (s *BunStore) RenameFolder(ctx context.Context, id int, name string) error {
	err := WithTx(ctx, s.bun, func(ctx context.Context, tx bun.Tx) error {
		if err := requireRow(ctx, tx, (*FolderModel)(nil), id); err != nil {
			return err
		}
		_, err := tx.NewUpdate().Model((*FolderModel)(nil)).Set("name = ?", name).Where("id = ?", id).Exec(ctx)
		return err
	})
	return wrapErr("rename folder", err)
}

// DeleteFolder removes the folder's direct items and the folder row in one
// transaction.
func (s *BunStore) DeleteFolder(ctx context.Context, id int) error {
	err := WithTx(ctx, s.bun, func(ctx context.Context, tx bun.Tx) error {
		if err := requireRow(ctx, tx, (*FolderModel)(nil), id); err != nil {
			return err
		}
		res, err := tx.NewDelete().Model((*ItemModel)(nil)).Where("folder_id = ?", id).Exec(ctx)
		if err != nil {
			return err
		}
		if _, err := tx.NewDelete().Model((*FolderModel)(nil)).Where("id = ?", id).Exec(ctx); err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil {
			dbLogf("db: deleted folder %d and %d item(s)", id, n)
		}
		return nil
	})
	return wrapErr("delete folder", err)
}

// GetFolder returns a single folder.
func (s *BunStore) GetFolder(ctx context.Context, id int) (*model.Folder, error) {
	var fm FolderModel
	if err := s.bun.NewSelect().Model(&fm).Where("id = ?", id).Limit(1).Scan(ctx); err != nil {
		return nil, wrapErr("get folder", err)
	}
	f := folderModelToModel(fm)
	return &f, nil
}

// ListFolders returns all folders ordered by id.
func (s *BunStore) ListFolders(ctx context.Context) ([]model.Folder, error) {
	var fms []FolderModel
	if err := s.bun.NewSelect().Model(&fms).Order("id ASC").Scan(ctx); err != nil {
		return nil, wrapErr("list folders", err)
	}
	out := make([]model.Folder, 0, len(fms))
	for _, fm := range fms {
		out = append(out, folderModelToModel(fm))
	}
	return out, nil
}

// CountFolders returns the number of folders.
func (s *BunStore) CountFolders(ctx context.Context) (int, error) {
	n, err := s.bun.NewSelect().Model((*FolderModel)(nil)).Count(ctx)
	return n, wrapErr("count folders", err)
}

// --- Items ---

// CreateItem inserts an item into folderID and returns its id.
func (s *BunStore) CreateItem(ctx context.Context, folderID int, fields model.ItemFields) (int, error) {
	im := fieldsToItemModel(folderID, fields)
	err := WithTx(ctx, s.bun, func(ctx context.Context, tx bun.Tx) error {
		// SQLite does not enforce the foreign key unless the pragma is set.
		if err := requireRow(ctx, tx, (*FolderModel)(nil), folderID); err != nil {
			return err
		}
		_, err := tx.NewInsert().Model(im).
			Column("folder_id", "title", "username", "password", "url", "notes").
			Returning("id").Exec(ctx)
		return err
	})
	if err != nil {
		return 0, wrapErr("create item", err)
	}
	return im.ID, nil
}

// UpdateItem overwrites all five mutable fields of an item.
func (s *BunStore) UpdateItem(ctx context.Context, id int, fields model.ItemFields) error {
	im := fieldsToItemModel(0, fields)
	im.ID = id
	err := WithTx(ctx, s.bun, func(ctx context.Context, tx bun.Tx) error {
		if err := requireRow(ctx, tx, (*ItemModel)(nil), id); err != nil {
			return err
		}
		_, err := tx.NewUpdate().Model(im).
			Column("title", "username", "password", "url", "notes").
			WherePK().Exec(ctx)
		return err
	})
	return wrapErr("update item", err)
}

// GetItem returns a single item with NULL columns read as empty strings.
func (s *BunStore) GetItem(ctx context.Context, id int) (*model.Item, error) {
	var im ItemModel
	if err := s.bun.NewSelect().Model(&im).Where("id = ?", id).Limit(1).Scan(ctx); err != nil {
		return nil, wrapErr("get item", err)
	}
	it := itemModelToModel(im)
	return &it, nil
}

// DeleteItem removes a single item.
func (s *BunStore) DeleteItem(ctx context.Context, id int) error {
	err := WithTx(ctx, s.bun, func(ctx context.Context, tx bun.Tx) error {
		if err := requireRow(ctx, tx, (*ItemModel)(nil), id); err != nil {
			return err
		}
		_, err := tx.NewDelete().Model((*ItemModel)(nil)).Where("id = ?", id).Exec(ctx)
		return err
	})
	return wrapErr("delete item", err)
}

// ListItems returns id and title of every item in folderID, newest first.
func (s *BunStore) ListItems(ctx context.Context, folderID int) ([]model.ItemSummary, error) {
	var ims []ItemModel
	err := s.bun.NewSelect().Model(&ims).Column("id", "title").
		Where("folder_id = ?", folderID).Order("id DESC").Scan(ctx)
	if err != nil {
		return nil, wrapErr("list items", err)
	}
	out := make([]model.ItemSummary, 0, len(ims))
	for _, im := range ims {
		out = append(out, model.ItemSummary{ID: im.ID, Title: im.Title.String})
	}
	return out, nil
}

// --- Master credential ---

// GetMasterCredential returns the stored master credential, if any.
func (s *BunStore) GetMasterCredential(ctx context.Context) (string, bool, error) {
	var mm MasterModel
	err := s.bun.NewSelect().Model(&mm).Where("id = ?", masterID).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, wrapErr("get master credential", err)
	}
	return mm.Password, true, nil
}

// SetMasterCredential replaces the master credential row atomically.
func (s *BunStore) SetMasterCredential(ctx context.Context, password string) error {
	err := WithTx(ctx, s.bun, func(ctx context.Context, tx bun.Tx) error {
		// Bun requires a WHERE clause for deletes; clear every row so at most
		// one ever exists.
		if _, err := tx.NewDelete().Model((*MasterModel)(nil)).Where("1 = 1").Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewInsert().Model(&MasterModel{ID: masterID, Password: password}).Exec(ctx)
		return err
	})
	return wrapErr("set master credential", err)
}

// CountMasterCredentials returns 0 or 1.
func (s *BunStore) CountMasterCredentials(ctx context.Context) (int, error) {
	n, err := s.bun.NewSelect().Model((*MasterModel)(nil)).Count(ctx)
	return n, wrapErr("count master credentials", err)
}

// --- Backup ---

// ExportDataForBackup exports every table into a model.BackupData using one
// read transaction.
func (s *BunStore) ExportDataForBackup(ctx context.Context) (*model.BackupData, error) {
	var backup *model.BackupData
	err := WithTx(ctx, s.bun, func(ctx context.Context, tx bun.Tx) error {
		backup = &model.BackupData{SchemaVersion: model.BackupSchemaVersion}

		var fms []FolderModel
		if err := tx.NewSelect().Model(&fms).Order("id ASC").Scan(ctx); err != nil {
			return err
		}
		for _, fm := range fms {
			backup.Folders = append(backup.Folders, folderModelToModel(fm))
		}

		var ims []ItemModel
		if err := tx.NewSelect().Model(&ims).Order("id ASC").Scan(ctx); err != nil {
			return err
		}
		for _, im := range ims {
			backup.Items = append(backup.Items, itemModelToModel(im))
		}

		var mms []MasterModel
		if err := tx.NewSelect().Model(&mms).Where("id = ?", masterID).Scan(ctx); err != nil {
			return err
		}
		if len(mms) > 0 {
			backup.Master = &model.MasterCredential{Password: mms[0].Password}
		}
		return nil
	})
	if err != nil {
		return nil, wrapErr("export backup", err)
	}
	return backup, nil
}

// ImportDataFromBackup performs a full wipe-and-replace in one transaction.
// Record ids are preserved.
func (s *BunStore) ImportDataFromBackup(ctx context.Context, backup *model.BackupData) error {
	if backup == nil {
		return &StorageError{Op: "import backup", Err: errors.New("backup is nil")}
	}
	err := WithTx(ctx, s.bun, func(ctx context.Context, tx bun.Tx) error {
		// Wipe tables, children first.
		for _, t := range []string{"items", "folders", "master"} {
			if _, err := ExecRaw(ctx, tx, fmt.Sprintf("DELETE FROM %s", t)); err != nil {
				return err
			}
		}
		for _, f := range backup.Folders {
			fm := &FolderModel{ID: f.ID, ParentID: parentToNull(f.ParentID), Name: f.Name}
			if _, err := tx.NewInsert().Model(fm).Column("id", "parent_id", "name").Exec(ctx); err != nil {
				return err
			}
		}
		for _, it := range backup.Items {
			im := fieldsToItemModel(it.FolderID, it.ItemFields)
			im.ID = it.ID
			if _, err := tx.NewInsert().Model(im).
				Column("id", "folder_id", "title", "username", "password", "url", "notes").Exec(ctx); err != nil {
				return err
			}
		}
		if backup.Master != nil {
			if _, err := tx.NewInsert().Model(&MasterModel{ID: masterID, Password: backup.Master.Password}).Exec(ctx); err != nil {
				return err
			}
		}
		return s.resetSequences(ctx, tx)
	})
	return wrapErr("import backup", err)
}

// resetSequences moves Postgres serial sequences past explicitly inserted
// ids. SQLite and MySQL track AUTOINCREMENT from the max id on their own.
func (s *BunStore) resetSequences(ctx context.Context, tx bun.Tx) error {
	if s.dbType != "postgres" {
		return nil
	}
	for _, t := range []string{"folders", "items"} {
		q := fmt.Sprintf("SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), COALESCE((SELECT MAX(id) FROM %[1]s), 0) + 1, false)", t)
		if _, err := ExecRaw(ctx, tx, q); err != nil {
			return err
		}
	}
	return nil
}

// requireRow returns sql.ErrNoRows when no row of the model's table has id.
// RowsAffected is not used for this: MySQL reports 0 for no-op updates.
func requireRow(ctx context.Context, tx bun.Tx, m interface{}, id int) error {
	ok, err := tx.NewSelect().Model(m).Where("id = ?", id).Exists(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return sql.ErrNoRows
	}
	return nil
}
