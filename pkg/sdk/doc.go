// Package sdk embeds the property search engine in-process, without running
// the HTTP server. It wires the index store, repositories and use case
// services behind a single Client, backed by Redis with the search module or
// by an in-memory store for tests and prototypes.
//
//	client, _ := sdk.Open(sdk.WithRedis("localhost:6379", ""))
//	defer client.Close()
//
//	_ = client.IndexProperty(ctx, sdk.Property{
//	    ID: "p-1", Title: "Lakeview Villa", Price: 450000,
//	    City: "Boulder, CO", Latitude: 40.015, Longitude: -105.27,
//	})
//
//	loc := sdk.City("Boulder, CO")
//	page, _ := client.Search(ctx, sdk.Query{Location: &loc})
//
// The embedded client owns the index schema but not the sync pipeline: feeding
// it is the caller's job. Deployments that need scheduled reindexing should
// run the full service instead.
package sdk
