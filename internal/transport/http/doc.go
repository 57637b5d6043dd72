// Package http implements the HTTP handlers of the logview web tool. Handlers
// stay thin: they parse the request, call a service and format the response.
//
// # Routes
//
//	GET  /                               upload form
//	POST /run                            run from the form, render the result page
//	GET  /result/{id}                    newest output of a transformation
//	GET  /download/{id}/{filename}       serve an output file
//	GET  /api/v1/functions               list transformations
//	GET  /api/v1/functions/{id}          describe one transformation
//	POST /api/v1/functions/{id}/run      run over multipart "files", JSON result
//	GET  /api/v1/functions/{id}/latest   preview of the newest output
//	GET  /api/v1/health[/ready|/live]    health checks
//	POST /api/v1/client-logs             browser error reports
//	GET  /metrics                        Prometheus scrape endpoint
//
// # Error Handling
//
// JSON endpoints answer with RFC 7807 problem details through
// errors.ErrorHandler:
//
//	{
//	    "type": "/errors/function/not-found",
//	    "title": "Not Found",
//	    "status": 404,
//	    "detail": "Function not found",
//	    "instance": "/api/v1/functions/nope"
//	}
//
// The HTML pages render the same problem as a message above the form.
package http
