// Package tagdex is an embedded Go client for tagdex record stores.
//
// It opens the same backends as the tagdex server (a JSON file, bbolt,
// Redis or Valkey) and exposes record storage and relevance search without
// the HTTP layer or the AI tagger.
//
//	client, _ := tagdex.New(ctx, tagdex.WithBolt("tagdex.db"))
//	defer client.Close()
//
//	rec, _ := client.Add(ctx, "Q3 budget review", []string{"budget", "finance"}, "/uploads/q3.pdf")
//	hits, _ := client.Search(ctx, "budget", 5)
package tagdex
