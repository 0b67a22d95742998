package main

import (
	"flag"
	"os"

	"github.com/erebus-edge/edgeprobe/pkg/probe1/model"
	"github.com/m-lab/go/cloud/bqx"
	"github.com/m-lab/go/rtx"

	"cloud.google.com/go/bigquery"
)

var summarySchema string

func init() {
	flag.StringVar(&summarySchema, "summary", "/var/spool/datatypes/edgeprobe_summary.json", "filename to write the summary schema")
}

func main() {
	flag.Parse()
	// Generate and save the schema for autoloading.
	sch, err := bigquery.InferSchema(model.Summary{})
	rtx.Must(err, "failed to generate summary schema")
	sch = bqx.RemoveRequired(sch)
	b, err := sch.ToJSONFields()
	rtx.Must(err, "failed to marshal summary schema")
	err = os.WriteFile(summarySchema, b, 0o644)
	rtx.Must(err, "failed to write summary schema")
}
