package mail

import "fmt"

// accountVerificationTemplate renders the HTML body of the OTP email.
func accountVerificationTemplate(name, otp string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <title>Account Verification</title>
</head>
<body style="margin:0; padding:0; font-family: Arial, sans-serif; background-color:#f4f4f4;">
  <div style="max-width:600px; margin:40px auto; background-color:#ffffff; border-radius:8px; overflow:hidden;">
    <div style="padding:20px; background-color:#0f172a; color:white;">
      <h2 style="margin:0;">Quick Chat</h2>
    </div>
    <div style="padding:30px;">
      <h3>Hello %s,</h3>
      <p style="font-size:16px; color:#333;">
        Thank you for signing up for <strong>Quick Chat</strong>. To verify your account, please use the following OTP:
      </p>
      <div style="text-align:center; margin:30px 0;">
        <span style="display:inline-block; background-color:#0f172a; color:white; padding:15px 30px; font-size:24px; border-radius:8px; letter-spacing:3px;">
          %s
        </span>
      </div>
      <p style="font-size:14px; color:#666;">
        This OTP is valid for the next 15 minutes. If you did not request this, please ignore this email.
      </p>
    </div>
  </div>
</body>
</html>`, name, otp)
}
