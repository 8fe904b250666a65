package pipeline

import (
	"testing"

	"github.com/lionscraft/docpythia/ent/docproposal"
	"github.com/stretchr/testify/require"
)

func TestDocProposalUpdateTypeKnownValues(t *testing.T) {
	require.Equal(t, docproposal.UpdateTypeINSERT, docProposalUpdateType("INSERT"))
	require.Equal(t, docproposal.UpdateTypeUPDATE, docProposalUpdateType("UPDATE"))
	require.Equal(t, docproposal.UpdateTypeDELETE, docProposalUpdateType("DELETE"))
	require.Equal(t, docproposal.UpdateTypeNONE, docProposalUpdateType("NONE"))
}

func TestDocProposalUpdateTypeUnknownDefaultsToNone(t *testing.T) {
	require.Equal(t, docproposal.UpdateTypeNONE, docProposalUpdateType("REWRITE"))
	require.Equal(t, docproposal.UpdateTypeNONE, docProposalUpdateType(""))
}
