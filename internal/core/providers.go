package core

import "context"

// Completer is the remote text-generation client.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Resolver answers a query from the local knowledge table without any network call.
type Resolver interface {
	Resolve(query string) (string, bool)
}

// KeywordMatcher is a Resolver that also reports which keyword matched.
type KeywordMatcher interface {
	Resolver
	Match(query string) (KnowledgeEntry, bool)
}
