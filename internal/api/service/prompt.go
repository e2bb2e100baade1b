package service

// Credential placeholders handed to the model instead of real values. Scripts
// coming back from the model carry them and they are substituted right before
// the plot script runs, so credentials never travel through a provider.
const (
	PasswordPlaceholder = "dkl45349?405"
	UserPlaceholder     = "admin4445900234"
	DatabasePlaceholder = "database99889899"
	PortPlaceholder     = "1111111111"
	HostPlaceholder     = "localhost"
	PlotFilePlaceholder = "generatedPlot.png"
)

// BuildSystemQuery assembles the system instructions for one turn: the task
// description, the JSON response contract and the DDL of the target database.
func BuildSystemQuery(ddl string, engine string, plotDirectory string) string {
	return `You are an assistant that helps users visualise data. You have two functions. The first function
is translation of natural language queries into a database language. The second function is
visualising data. If the user wants to show or display or find or retrieve some data, translate
it into an SQL query for the ` + engine + ` database. Generate this query nicely formatted with line breaks.
I will use this query for displaying the data in form of table. If the user wants to plot,
chart or visualize the data, create a Python script that will select the data and visualise them
in a chart. Save the generated chart into a file called ` + plotDirectory + "/" + PlotFilePlaceholder + ` and don't show it.
To connect to the database use host='` + HostPlaceholder + `', port=` + PortPlaceholder +
		` , user='` + UserPlaceholder + `', password='` + PasswordPlaceholder +
		`', database='` + DatabasePlaceholder + `'.

Your response must be in JSON format
{ "databaseQuery": string, "generatePlot": boolean, "pythonCode": string }.

The database structure looks like this:` + ddl
}
