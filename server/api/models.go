package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/dekarrin/cfgnorm/internal/pipeline"
	"github.com/dekarrin/cfgnorm/server/dao"
)

// note that these are *not* the DAO models; those are distinct and closer to
// the DB format they are in. Rather these are the models that are received from
// and sent to the client.

type InfoModel struct {
	Version struct {
		Server  string `json:"server"`
		Cfgnorm string `json:"cfgnorm"`
	} `json:"version"`
}

type GrammarRequest struct {
	Source *string `json:"source"`
}

type QueryRequest struct {
	Input *string `json:"input"`
}

type StageModel struct {
	Name    string `json:"name"`
	Grammar string `json:"grammar"`
}

type GrammarModel struct {
	URI         string       `json:"uri"`
	ID          string       `json:"id"`
	Source      string       `json:"source"`
	Fingerprint string       `json:"fingerprint"`
	Final       string       `json:"final"`
	Variables   []string     `json:"variables"`
	Created     string       `json:"created"`
	Stages      []StageModel `json:"stages,omitempty"`
}

type QueryModel struct {
	ID       string `json:"id"`
	Grammar  string `json:"grammar"`
	Input    string `json:"input"`
	Accepted bool   `json:"accepted"`
	Created  string `json:"created"`
}

func grammarURI(id uuid.UUID) string {
	return PathPrefix + "/grammars/" + id.String()
}

func grammarToModel(g dao.Grammar) GrammarModel {
	vars := g.Final.Variables()
	if vars == nil {
		vars = []string{}
	}
	return GrammarModel{
		URI:         grammarURI(g.ID),
		ID:          g.ID.String(),
		Source:      g.Source,
		Fingerprint: g.Fingerprint,
		Final:       g.Final.String(),
		Variables:   vars,
		Created:     g.Created.Format(time.RFC3339),
	}
}

func stagesToModel(res pipeline.Result) []StageModel {
	stages := make([]StageModel, len(res.Stages))
	for i := range res.Stages {
		stages[i] = StageModel{
			Name:    res.Stages[i].Name,
			Grammar: res.Stages[i].Grammar.String(),
		}
	}
	return stages
}

func queryToModel(q dao.Query) QueryModel {
	return QueryModel{
		ID:       q.ID.String(),
		Grammar:  q.GrammarID.String(),
		Input:    q.Input,
		Accepted: q.Result,
		Created:  q.Created.Format(time.RFC3339),
	}
}
