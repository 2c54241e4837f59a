// Package records persists entity rows of the local vault.
//
// Every entity lives in the single records table, addressed by
// (collection, id). A row is either sealed (nonce + ciphertext produced by
// cryptox) or plain (legacy JSON in data written before encryption
// existed). The repository stores bytes only; it never sees keys or
// plaintext of sealed rows.
//
// SQLiteRepository works over dbx.DBTX, so the same code runs against the
// pool or inside a transaction opened by dbx.WithTx.
//
//	repo := records.NewSQLiteRepository(db)
//	_ = repo.Upsert(ctx, &rec)
//	rows, _ := repo.List(ctx, "applications")
//	_ = repo.Delete(ctx, "applications", id)
package records
