package email

const alertTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Oxygen, Ubuntu, sans-serif;
            line-height: 1.6;
            color: #333;
            max-width: 600px;
            margin: 0 auto;
            padding: 20px;
        }
        .header {
            background: {{.SeverityColor}};
            color: white;
            padding: 30px;
            text-align: center;
            border-radius: 10px 10px 0 0;
        }
        .header h1 {
            margin: 0;
            font-size: 24px;
        }
        .content {
            background: #ffffff;
            padding: 30px;
            border: 1px solid #e5e7eb;
            border-top: none;
        }
        .info-box {
            background: #f3f4f6;
            border-radius: 6px;
            padding: 16px;
            margin: 16px 0;
        }
        .info-box td {
            padding: 4px 12px 4px 0;
        }
        .severity {
            display: inline-block;
            background: {{.SeverityColor}};
            color: white;
            padding: 4px 12px;
            border-radius: 4px;
            text-transform: uppercase;
            font-size: 12px;
        }
        .footer {
            background: #f9fafb;
            padding: 20px;
            text-align: center;
            font-size: 12px;
            color: #6b7280;
            border: 1px solid #e5e7eb;
            border-top: none;
            border-radius: 0 0 10px 10px;
        }
    </style>
</head>
<body>
    <div class="header">
        <h1>⚡ Energy Alert</h1>
    </div>
    <div class="content">
        <p><span class="severity">{{.Severity}}</span></p>
        <p>{{.Message}}</p>
        <div class="info-box">
            <table>
                <tr><td><strong>Alert type</strong></td><td>{{.AlertType}}</td></tr>
                {{if .DeviceName}}<tr><td><strong>Device</strong></td><td>{{.DeviceName}}</td></tr>{{end}}
                <tr><td><strong>Threshold</strong></td><td>{{.ThresholdValue}}</td></tr>
                <tr><td><strong>Measured</strong></td><td>{{.ActualValue}}</td></tr>
                <tr><td><strong>Time</strong></td><td>{{.SentAt}}</td></tr>
            </table>
        </div>
        <p>Open your dashboard to review the device history and adjust the alert threshold if this fires too often.</p>
    </div>
    <div class="footer">
        <p>WattScope home energy monitoring</p>
        <p>You receive this email because this address is on the alert recipient list.</p>
    </div>
</body>
</html>
`

const testTemplate = `
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2>WattScope test email</h2>
    <p>This message confirms that alert delivery to <strong>{{.To}}</strong> is working.</p>
    <p>No action is needed.</p>
</body>
</html>
`
