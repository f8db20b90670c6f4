// Package pagemark provides an embeddable Go client for named PDF-page
// coordinates backed by an embedded SQLite database.
//
// The client covers the persistence side (document registry and point store)
// and the pure helpers (coordinate transform and point matching). Rendering
// and text extraction live in the pagemark server.
//
//	client, _ := pagemark.New(ctx, pagemark.WithSQLite("data/pagemark.db"))
//	defer client.Close()
//
//	doc, _ := client.Documents().Register(ctx, pagemark.RegisterDocument{
//	    Filename: "invoice.pdf", PageCount: 3,
//	})
//	p, _ := client.Points().Save(ctx, pagemark.SavePoint{
//	    DocumentID: doc.ID, Name: "total", X: 100, Y: 200, Page: 1,
//	})
//	csv, _ := client.Points().ExportCSV(ctx, doc.ID)
//
// Tokens near a coordinate:
//
//	hits, _ := pagemark.Match(tokens, 100, 700, pagemark.DefaultTolerance)
package pagemark
