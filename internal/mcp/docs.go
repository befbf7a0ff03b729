package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `defectlog keeps a running log of production-line defect observations and
writes them out as CSV and text reports.

Each record holds the time of day it was logged, a quality percentage and a free-text
occurrence. Quality is entered as XX,X with a comma decimal (for example 94,5) or as a
whole number; it is stored as "94,5%". Anything below 96% is flagged as low quality.

Tools:
- create_record / update_record: log or correct an observation. Prefer updating by id;
  index refers to the newest-first order returned by list_records at the time of the call.
- list_records: current records, newest first.
- export_now: write the reports now. Records are kept.
- clear_records: delete everything without exporting.
- get_schedule: the daily export times and the next one due. Scheduled exports write the
  reports and then remove the exported records.
- get_recent_activity: what changed and how exports went.

If a write response has saved=false the change is live but the data file could not be
written; it will be retried on the next change.

Docs:
- defectlog://docs/index
- defectlog://docs/reports
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "defectlog://docs/index",
		Name:        "docs_index",
		Title:       "defectlog docs index",
		Description: "What the server stores, how quality is entered, and when exports run.",
		Content: `# defectlog

## Records

| Field | Meaning |
|---|---|
| id | stable identifier, use it for update_record |
| time | HH:MM at the moment the record was created; never changes |
| qualidade | quality, stored as "XX,X%" |
| occurrence | what was observed |

## Entering quality

- ` + "`94,5`" + ` → 94,5%
- ` + "`100`" + ` → 100,0%
- ` + "`7`" + ` → 7,0%
- ` + "`94.5`" + `, ` + "`101`" + `, ` + "`abc`" + ` are rejected

Values under 96 are low quality. Exactly 96,0 is not low.

## Exports

- Manual (export_now): files tagged with the current HHMM, records stay.
- Scheduled: at each configured HH:MM, files tagged with the trigger time, the exported
  records are removed afterwards. Records added while an export runs are kept.
- Nothing is written when there are no records.
`,
	},
	{
		URI:         "defectlog://docs/reports",
		Name:        "docs_reports",
		Title:       "Report file formats",
		Description: "Names and layouts of the CSV and narrative text reports.",
		Content: `# Report files

Both files land in the export directory and share a base name:

    Relatorio_Defeitos_DD-MM-YYYY_HHMM.csv
    Relatorio_Defeitos_DD-MM-YYYY_HHMM.txt

An existing file with the same name is replaced.

## CSV

Header ` + "`Hora,Qualidade (%),Ocorrencia`" + `, one row per record in insertion order.
Quality is written as stored, for example 94,5%.

## Text

A title, the generation timestamp, a dashed separator, then one block per record:

    HORA: 08:15
    QUALIDADE: 94,5% (BAIXA)
    OCORRÊNCIA: risco na lateral

The "(BAIXA)" marker appears for low-quality records only.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
