package fileshare

// Static pages served by the upload flow. The markup is kept inline; the
// service has no asset pipeline and no template data beyond the file URL.

const uploadPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Upload File | FileShare</title>
  <style>
    body { font-family: Arial, sans-serif; background: #f4f7fa; display: flex; justify-content: center; align-items: center; height: 100vh; margin: 0; }
    .container { text-align: center; background: #fff; padding: 40px; border-radius: 12px; box-shadow: 0 4px 15px rgba(0,0,0,0.1); width: 400px; }
    h2 { color: #333; margin-bottom: 20px; }
    input[type=file] { margin-bottom: 15px; }
    .btn { background: #007bff; color: #fff; border: none; padding: 10px 20px; border-radius: 6px; cursor: pointer; font-size: 14px; }
    .btn:hover { background: #0056b3; }
  </style>
</head>
<body>
  <div class="container">
    <h2>Upload File</h2>
    <form action="/upload_success" method="post" enctype="multipart/form-data">
      <input type="file" name="file" required><br>
      <button class="btn" type="submit">Upload</button>
    </form>
  </div>
</body>
</html>
`

// uploadSuccessHTML takes the file URL twice: once for display, once for
// the open link.
const uploadSuccessHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Upload Success | FileShare</title>
  <style>
    body { font-family: Arial, sans-serif; background: #f4f7fa; display: flex; justify-content: center; align-items: center; height: 100vh; margin: 0; }
    .container { text-align: center; background: #fff; padding: 40px; border-radius: 12px; box-shadow: 0 4px 15px rgba(0,0,0,0.1); width: 500px; }
    h2 { color: #333; margin-bottom: 10px; }
    p { color: #666; margin-bottom: 20px; }
    .url-box { border: 1px solid #ddd; padding: 10px; border-radius: 8px; margin-bottom: 20px; word-break: break-all; }
    .btn { padding: 10px 20px; border-radius: 6px; text-decoration: none; font-size: 14px; background: #007bff; color: #fff; }
    .btn:hover { background: #0056b3; }
  </style>
</head>
<body>
  <div class="container">
    <h2>File Uploaded Successfully!</h2>
    <p>Your file has been uploaded. Copy the URL below to share it:</p>
    <div class="url-box">%s</div>
    <a href="/upload" class="btn">Back to Upload</a>
    <a href="%s" target="_blank" class="btn">Open File</a>
  </div>
</body>
</html>
`
