package ingest

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	pkgerrors "unify/pkg/errors"
)

type LoaderSuite struct {
	suite.Suite
	dir    string
	loader *Loader
}

func TestLoaderSuite(t *testing.T) {
	suite.Run(t, new(LoaderSuite))
}

func (s *LoaderSuite) SetupTest() {
	s.dir = s.T().TempDir()
	s.loader = NewLoader(slog.Default())
}

func (s *LoaderSuite) writeFile(name, content string) {
	s.Require().NoError(os.WriteFile(filepath.Join(s.dir, name), []byte(content), 0o644))
}

func (s *LoaderSuite) TestLoadDir() {
	s.writeFile("b_card_system.json", `[
		{"source_system":"card_system","source_id":"CH-77","entity_type":"PERSON","name":{"first_name":"JOHN","last_name":"SMITH","full_name":"JOHN SMITH"}}
	]`)
	s.writeFile("a_deposit_core.json", `[
		{"source_system":"deposit_core","source_id":"CUST-001","entity_type":"PERSON","name":{"first_name":"JOHN","last_name":"SMITH","full_name":"JOHN SMITH"}},
		{"source_system":"deposit_core","source_id":"CUST-002","entity_type":"BUSINESS","name":{"full_name":"ACME LLC"}}
	]`)
	s.writeFile("notes.txt", "not json, ignored")

	records, stats, err := s.loader.LoadDir(s.dir)
	s.Require().NoError(err)

	s.Equal(Stats{Files: 2, Loaded: 3, Skipped: 0}, stats)
	s.Require().Len(records, 3)

	// Lexicographic file order, then array order.
	s.Equal("CUST-001", records[0].SourceID)
	s.Equal("CUST-002", records[1].SourceID)
	s.Equal("CH-77", records[2].SourceID)
}

func (s *LoaderSuite) TestMalformedRecordsSkipped() {
	s.writeFile("records.json", `[
		{"source_system":"deposit_core","source_id":"CUST-001","entity_type":"PERSON","name":{"full_name":"JOHN SMITH"}},
		{"source_system":"deposit_core","source_id":"","entity_type":"PERSON"},
		{"source_system":"deposit_core","source_id":"CUST-003","entity_type":"ALIEN"},
		null
	]`)

	records, stats, err := s.loader.LoadDir(s.dir)
	s.Require().NoError(err)

	s.Equal(Stats{Files: 1, Loaded: 1, Skipped: 3}, stats)
	s.Require().Len(records, 1)
	s.Equal("CUST-001", records[0].SourceID)
}

func (s *LoaderSuite) TestEmptyDirIsValid() {
	records, stats, err := s.loader.LoadDir(s.dir)
	s.Require().NoError(err)
	s.Empty(records)
	s.Equal(Stats{}, stats)
}

func (s *LoaderSuite) TestMissingDir() {
	_, _, err := s.loader.LoadDir(filepath.Join(s.dir, "nope"))
	s.Require().Error(err)
	s.True(pkgerrors.HasCode(err, pkgerrors.CodeInvalidInput))
}

func (s *LoaderSuite) TestUnparsableFileFails() {
	s.writeFile("broken.json", `{"not":"an array"`)

	_, _, err := s.loader.LoadDir(s.dir)
	s.Require().Error(err)
	s.True(pkgerrors.HasCode(err, pkgerrors.CodeInvalidInput))
}

func (s *LoaderSuite) TestLoadFile() {
	s.writeFile("one.json", `[
		{"source_system":"deposit_core","source_id":"CUST-001","entity_type":"PERSON","name":{"full_name":"JOHN SMITH"}}
	]`)

	records, stats, err := s.loader.LoadFile(filepath.Join(s.dir, "one.json"))
	s.Require().NoError(err)
	s.Len(records, 1)
	s.Equal(Stats{Files: 1, Loaded: 1}, stats)
}
