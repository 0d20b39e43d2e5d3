package rod

// HTML fixtures for browser tests
const (
	BasicHTML = `<!DOCTYPE html>
<html>
<head><title>Test Page</title></head>
<body>
	<h1>Hello World</h1>
</body>
</html>`

	NavigationHTML = `<!DOCTYPE html>
<html>
<head><title>City Library</title></head>
<body>
	<nav>
		<a href="/hours">Opening Hours</a>
		<a href="https://other.example.com/events">Events</a>
		<a>No href</a>
	</nav>
	<main>
		<h2>Welcome</h2>
		<p>The city library lends books, music and films to all residents free of charge.</p>
	</main>
</body>
</html>`
)
