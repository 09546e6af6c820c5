package i18n

import "github.com/instagov/birthbot/internal/domain"

// builtinTables returns the built-in English and Hindi message sets.
func builtinTables() map[domain.Locale]map[MessageID]string {
	return map[domain.Locale]map[MessageID]string{
		domain.LocaleEN: {
			MsgWelcome: `🏛️ *Welcome to HP Birth Certificate Services*

👋 Namaste! I'm your digital assistant for birth certificate applications.

Please select your preferred language to continue:`,

			MsgConsent: `🔒 *Data Consent*

To process a birth certificate application I need to collect personal details (child's details, parents' names, address, mobile number).

Your data is used only for this application and is handled per government data-protection rules.

Do you agree to continue?

1️⃣ Yes, I agree
2️⃣ No, exit`,

			MsgConsentDeclined: `👋 No problem. Your data has not been stored. Send any message whenever you wish to start again.`,

			MsgDocsInfo: `📄 *Documents to keep handy*

✅ Hospital discharge slip or birth proof
✅ Parents' ID proof (Aadhaar)
✅ Address proof

No uploads are needed in chat; details are collected as answers.

Reply *OK* to continue.`,

			MsgMainMenu: `📋 *Main Menu*

What would you like to do?

1️⃣ Apply for New Birth Certificate
2️⃣ Check Application Status
3️⃣ Download Certificate
4️⃣ Help & Support

Reply with the number of your choice.`,

			MsgStartApplication: `📝 *New Birth Certificate Application*

I'll help you apply for a birth certificate. Please have the following information ready:

✅ Child's details (Name, DOB, Gender)
✅ Parents' details
✅ Place of birth
✅ Contact information

Let's begin!

What is the *full name of the child*?`,

			MsgAskDOB: `📅 What is the *date of birth* of the child?

Please enter in format: DD/MM/YYYY
Example: 15/01/2024`,

			MsgAskGender: `👶 What is the *gender* of the child?

Reply with:
1️⃣ Male
2️⃣ Female
3️⃣ Other`,

			MsgAskFatherName: `👨 What is the *father's full name*?`,

			MsgAskMotherName: `👩 What is the *mother's full name*?`,

			MsgAskPlaceOfBirth: `🏥 Where was the child born?

Reply with:
1️⃣ Hospital
2️⃣ Home
3️⃣ Other`,

			MsgAskHospitalName: `🏥 What is the *name of the hospital*?`,

			MsgAskAddress: `🏠 What is your *complete address*?

Include: House/Flat No., Street, Area, City, PIN Code`,

			MsgAskMobile: `📱 What is your *mobile number*?

This will be used for updates and OTP verification.`,

			MsgConfirmDetails: `✅ *Please confirm your details:*

👶 Child Name: {childName}
📅 Date of Birth: {dob}
👤 Gender: {gender}
👨 Father's Name: {fatherName}
👩 Mother's Name: {motherName}
🏥 Place of Birth: {placeOfBirth}
🏠 Address: {address}
📱 Mobile: {mobile}

Is this information correct?

1️⃣ Yes, Submit Application
2️⃣ No, Start Over`,

			MsgApplicationSubmitted: `🎉 *Application Submitted Successfully!*

Your application ID: *{applicationId}*

✅ Your birth certificate application has been received
📧 Confirmation sent to your mobile
⏱️ Processing time: 7-10 working days

You can check your application status anytime by selecting "Check Status" from the main menu.

Type *MENU* to return to main menu.`,

			MsgApplicationCancelled: `🔄 Application cancelled. Type MENU to start over.`,

			MsgStatusComingSoon:   `🔍 Status check feature coming soon!`,
			MsgDownloadComingSoon: `📥 Download feature coming soon!`,

			MsgInvalidInput: `❌ Invalid input. Please try again.`,

			MsgHelp: `ℹ️ *Help & Support*

*How to apply:*
1. Select language
2. Choose "Apply for New Certificate"
3. Fill in all required details
4. Submit application

*Processing time:* 7-10 working days

*For technical support:*
📞 Call: 1800-XXX-XXXX
📧 Email: support@hpgov.in

Type *MENU* to return to main menu.`,

			MsgErrRateLimited: `⏳ Too many requests. Please wait a moment and try again.`,
			MsgErrServerError: `⚠️ Service temporarily unavailable. We're working on it!`,
			MsgErrAuth:        `🔒 Session expired. Please start over by typing "Hi"`,
			MsgErrOTPInvalid:  `❌ Invalid OTP. Please check and enter the correct code.`,
			MsgErrOTPExpired:  `⏰ OTP expired. Click "Get OTP" to receive a new code.`,
			MsgErrValidation:  `⚠️ Invalid input. Please check your information.`,
			MsgErrNetwork:     `📡 Connection issue. Please check your internet and try again.`,
			MsgDefaultError:   `❌ Something went wrong. Please try again or type "Help"`,
		},

		domain.LocaleHI: {
			MsgWelcome: `🏛️ *हिमाचल प्रदेश जन्म प्रमाण पत्र सेवा में आपका स्वागत है*

👋 नमस्ते! मैं जन्म प्रमाण पत्र आवेदन के लिए आपका डिजिटल सहायक हूं।

कृपया जारी रखने के लिए अपनी पसंदीदा भाषा चुनें:`,

			MsgConsent: `🔒 *डेटा सहमति*

जन्म प्रमाण पत्र आवेदन के लिए मुझे व्यक्तिगत विवरण (बच्चे का विवरण, माता-पिता के नाम, पता, मोबाइल नंबर) एकत्र करना होगा।

आपका डेटा केवल इस आवेदन के लिए उपयोग होता है।

क्या आप जारी रखने के लिए सहमत हैं?

1️⃣ हां, मैं सहमत हूं
2️⃣ नहीं, बाहर निकलें`,

			MsgConsentDeclined: `👋 कोई बात नहीं। आपका डेटा संग्रहीत नहीं किया गया है। फिर से शुरू करने के लिए कभी भी कोई संदेश भेजें।`,

			MsgDocsInfo: `📄 *तैयार रखने योग्य दस्तावेज़*

✅ अस्पताल डिस्चार्ज पर्ची या जन्म प्रमाण
✅ माता-पिता का पहचान प्रमाण (आधार)
✅ पता प्रमाण

चैट में अपलोड की आवश्यकता नहीं है; विवरण उत्तरों के रूप में लिए जाते हैं।

जारी रखने के लिए *OK* भेजें।`,

			MsgMainMenu: `📋 *मुख्य मेनू*

आप क्या करना चाहेंगे?

1️⃣ नया जन्म प्रमाण पत्र के लिए आवेदन करें
2️⃣ आवेदन की स्थिति जांचें
3️⃣ प्रमाण पत्र डाउनलोड करें
4️⃣ सहायता और समर्थन

अपनी पसंद का नंबर भेजें।`,

			MsgStartApplication: `📝 *नया जन्म प्रमाण पत्र आवेदन*

मैं आपको जन्म प्रमाण पत्र के लिए आवेदन करने में मदद करूंगा। कृपया निम्नलिखित जानकारी तैयार रखें:

✅ बच्चे का विवरण (नाम, जन्मतिथि, लिंग)
✅ माता-पिता का विवरण
✅ जन्म स्थान
✅ संपर्क जानकारी

आइए शुरू करें!

बच्चे का *पूरा नाम* क्या है?`,

			MsgAskDOB: `📅 बच्चे की *जन्म तिथि* क्या है?

कृपया इस प्रारूप में दर्ज करें: DD/MM/YYYY
उदाहरण: 15/01/2024`,

			MsgAskGender: `👶 बच्चे का *लिंग* क्या है?

जवाब दें:
1️⃣ पुरुष
2️⃣ महिला
3️⃣ अन्य`,

			MsgAskFatherName: `👨 पिता का *पूरा नाम* क्या है?`,

			MsgAskMotherName: `👩 माता का *पूरा नाम* क्या है?`,

			MsgAskPlaceOfBirth: `🏥 बच्चे का जन्म कहाँ हुआ था?

जवाब दें:
1️⃣ अस्पताल
2️⃣ घर
3️⃣ अन्य`,

			MsgAskHospitalName: `🏥 *अस्पताल का नाम* क्या है?`,

			MsgAskAddress: `🏠 आपका *पूरा पता* क्या है?

शामिल करें: मकान/फ्लैट नंबर, गली, क्षेत्र, शहर, पिन कोड`,

			MsgAskMobile: `📱 आपका *मोबाइल नंबर* क्या है?

इसका उपयोग अपडेट और OTP सत्यापन के लिए किया जाएगा।`,

			MsgConfirmDetails: `✅ *कृपया अपने विवरण की पुष्टि करें:*

👶 बच्चे का नाम: {childName}
📅 जन्म तिथि: {dob}
👤 लिंग: {gender}
👨 पिता का नाम: {fatherName}
👩 माता का नाम: {motherName}
🏥 जन्म स्थान: {placeOfBirth}
🏠 पता: {address}
📱 मोबाइल: {mobile}

क्या यह जानकारी सही है?

1️⃣ हां, आवेदन जमा करें
2️⃣ नहीं, फिर से शुरू करें`,

			MsgApplicationSubmitted: `🎉 *आवेदन सफलतापूर्वक जमा किया गया!*

आपका आवेदन ID: *{applicationId}*

✅ आपका जन्म प्रमाण पत्र आवेदन प्राप्त हो गया है
📧 आपके मोबाइल पर पुष्टि भेजी गई
⏱️ प्रक्रिया समय: 7-10 कार्य दिवस

आप मुख्य मेनू से "स्थिति जांचें" चुनकर किसी भी समय अपने आवेदन की स्थिति जांच सकते हैं।

मुख्य मेनू पर वापस जाने के लिए *MENU* टाइप करें।`,

			MsgApplicationCancelled: `🔄 आवेदन रद्द कर दिया गया। फिर से शुरू करने के लिए MENU टाइप करें।`,

			MsgStatusComingSoon:   `🔍 स्थिति जांच सुविधा जल्द आ रही है!`,
			MsgDownloadComingSoon: `📥 डाउनलोड सुविधा जल्द आ रही है!`,

			MsgInvalidInput: `❌ अमान्य इनपुट। कृपया पुनः प्रयास करें।`,

			MsgHelp: `ℹ️ *सहायता और समर्थन*

*आवेदन कैसे करें:*
1. भाषा चुनें
2. "नया प्रमाण पत्र के लिए आवेदन करें" चुनें
3. सभी आवश्यक विवरण भरें
4. आवेदन जमा करें

*प्रक्रिया समय:* 7-10 कार्य दिवस

*तकनीकी सहायता के लिए:*
📞 कॉल करें: 1800-XXX-XXXX
📧 ईमेल: support@hpgov.in

मुख्य मेनू पर वापस जाने के लिए *MENU* टाइप करें।`,

			MsgErrRateLimited: `⏳ बहुत सारे अनुरोध। कृपया थोड़ी देर प्रतीक्षा करें।`,
			MsgErrServerError: `⚠️ सेवा अस्थायी रूप से अनुपलब्ध है। हम इस पर काम कर रहे हैं!`,
			MsgErrAuth:        `🔒 सत्र समाप्त हो गया। कृपया "Hi" टाइप करके फिर से शुरू करें`,
			MsgErrOTPInvalid:  `❌ गलत OTP। कृपया सही कोड दर्ज करें।`,
			MsgErrOTPExpired:  `⏰ OTP समाप्त हो गया। नया कोड पाने के लिए "Get OTP" पर क्लिक करें।`,
			MsgErrValidation:  `⚠️ अमान्य इनपुट। कृपया अपनी जानकारी जांचें।`,
			MsgErrNetwork:     `📡 कनेक्शन समस्या। कृपया अपना इंटरनेट जांचें।`,
			MsgDefaultError:   `❌ कुछ गलत हो गया। कृपया पुनः प्रयास करें या "Help" टाइप करें`,
		},
	}
}
