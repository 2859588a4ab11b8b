// Package testkit provides deterministic measurement tables for tests.
// The literal tables and generated cohorts here go through the same
// ingestion path as real files; nothing reads them outside tests.
package testkit

// ScenarioCSV is the smallest table exercising both cohorts and a missing value:
// HC mean at hour 0 is 2.0, AD/MCI has no data.
const ScenarioCSV = "PATIENT,Group,Timepoint,IL-6\n" +
	"P1,HC,0,1.0\n" +
	"P2,HC,0,3.0\n" +
	"P3,AD/MCI,0,\n"

// PanelCSV is a hand-written slice of the serum panel: four timepoints listed
// out of order, two categorized analytes per group, one uncategorized analyte,
// a textual out-of-range cell and a literal zero.
const PanelCSV = "PATIENT,Group,Timepoint,IL-6 (57),TNFa (75),IL-10 (27),EGF (12),MCP-1 (67),Mystery (99)\n" +
	"P1,HC,5,12.0,4.0,2.0,30.0,100.0,1.0\n" +
	"P1,HC,0,10.0,3.0,1.0,20.0,90.0,1.0\n" +
	"P1,HC,3,11.0,3.5,1.5,25.0,95.0,1.0\n" +
	"P1,HC,1,10.5,3.2,1.2,22.0,92.0,1.0\n" +
	"P2,HC,0,20.0,5.0,,40.0,110.0,\n" +
	"P2,HC,1,21.0,5.5,0,41.0,111.0,\n" +
	"P2,HC,3,22.0,6.0,,42.0,112.0,\n" +
	"P2,HC,5,23.0,6.5,,43.0,113.0,\n" +
	"P3,HC,0,30.0,OOR <,3.0,60.0,130.0,2.0\n" +
	"P4,AD/MCI,0,40.0,8.0,4.0,70.0,150.0,\n" +
	"P4,AD/MCI,1,45.0,9.0,4.5,75.0,155.0,\n" +
	"P4,AD/MCI,3,50.0,10.0,5.0,80.0,160.0,\n" +
	"P4,AD/MCI,5,55.0,11.0,5.5,85.0,165.0,\n" +
	"P5,AD/MCI,0,60.0,12.0,6.0,90.0,170.0,\n" +
	"P5,AD/MCI,1,,13.0,6.5,95.0,175.0,\n" +
	"P5,AD/MCI,3,,14.0,7.0,100.0,180.0,\n" +
	"P5,AD/MCI,5,,15.0,7.5,105.0,185.0,\n"

// PanelAnalytes lists PanelCSV's analyte columns in header order
var PanelAnalytes = []string{"IL-6 (57)", "TNFa (75)", "IL-10 (27)", "EGF (12)", "MCP-1 (67)", "Mystery (99)"}
