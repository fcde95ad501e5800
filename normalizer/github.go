package normalizer

// GitHub webhook payload shapes, limited to the fields the normalizer reads.
// See https://docs.github.com/webhooks/webhook-events-and-payloads

type PushPayload struct {
	Ref    string `json:"ref"`
	Pusher struct {
		Name string `json:"name"`
	} `json:"pusher"`
	Commits []Commit `json:"commits"`
}

type Commit struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Author    struct {
		Name string `json:"name"`
	} `json:"author"`
}

type PullRequestPayload struct {
	Action      string      `json:"action"`
	PullRequest PullRequest `json:"pull_request"`
}

type PullRequest struct {
	Number int `json:"number"`
	User   struct {
		Login string `json:"login"`
	} `json:"user"`
	Head struct {
		Ref string `json:"ref"`
	} `json:"head"`
	Base struct {
		Ref string `json:"ref"`
	} `json:"base"`
	Merged    bool   `json:"merged"`
	CreatedAt string `json:"created_at"`
	MergedAt  string `json:"merged_at"`
}
